package logging

import "strings"

// ProgressSampler suppresses repetitive per-asset progress logs while
// preserving signal when the phase changes or the processed count
// crosses a stride boundary.
type ProgressSampler struct {
	stride    uint
	lastPhase string
	lastBand  int
}

// NewProgressSampler constructs a sampler that emits every stride
// processed assets (default 100) and on every phase change.
func NewProgressSampler(stride uint) *ProgressSampler {
	if stride == 0 {
		stride = 100
	}
	return &ProgressSampler{stride: stride, lastBand: -1}
}

// ShouldLog reports whether a progress event is worth logging.
func (s *ProgressSampler) ShouldLog(phase string, processed uint) bool {
	if s == nil {
		return true
	}
	phase = strings.TrimSpace(phase)
	emit := false
	if phase != "" && phase != s.lastPhase {
		s.lastPhase = phase
		s.lastBand = -1
		emit = true
	}
	if band := int(processed / s.stride); band > s.lastBand {
		s.lastBand = band
		emit = true
	}
	return emit
}

// Reset clears the sampler state when a new import starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastPhase = ""
	s.lastBand = -1
}
