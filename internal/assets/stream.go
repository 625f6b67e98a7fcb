package assets

import "io"

// Stream is a pull-based sequence of decoded assets. Next returns io.EOF
// once the stream is exhausted; any other error is fatal for the stream.
// Files a decoder silently drops (unrecoverable key, malformed image) are
// counted in Skipped rather than surfaced as errors.
type Stream interface {
	Next() (Asset, error)
	// Total reports the number of candidate entries the stream will
	// consider, or 0 when unknown up front.
	Total() int
	// Skipped reports how many entries have been silently dropped so far.
	Skipped() int
}

type concat struct {
	streams []Stream
	index   int
}

// Concat chains streams into one logical sequence, preserving order:
// everything from the first stream is yielded before the second is
// touched. Totals and skip counts aggregate across all parts.
func Concat(streams ...Stream) Stream {
	return &concat{streams: streams}
}

func (c *concat) Next() (Asset, error) {
	for c.index < len(c.streams) {
		asset, err := c.streams[c.index].Next()
		if err == io.EOF {
			c.index++
			continue
		}
		return asset, err
	}
	return Asset{}, io.EOF
}

func (c *concat) Total() int {
	total := 0
	for _, s := range c.streams {
		total += s.Total()
	}
	return total
}

func (c *concat) Skipped() int {
	skipped := 0
	for _, s := range c.streams {
		skipped += s.Skipped()
	}
	return skipped
}

// SliceStream yields a fixed set of assets; used by decoders that
// materialize their output up front and by tests.
type SliceStream struct {
	Assets  []Asset
	Dropped int
	pos     int
}

func (s *SliceStream) Next() (Asset, error) {
	if s.pos >= len(s.Assets) {
		return Asset{}, io.EOF
	}
	asset := s.Assets[s.pos]
	s.pos++
	return asset, nil
}

func (s *SliceStream) Total() int { return len(s.Assets) }

func (s *SliceStream) Skipped() int { return s.Dropped }
