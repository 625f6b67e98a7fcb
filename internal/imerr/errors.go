// Package imerr defines the import pipeline's fatal error kinds. Every
// error surfaced to callers wraps one of the sentinels below so the CLI
// and embedding code can classify failures without string matching.
package imerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEngineUndetectable = errors.New("engine undetectable")
	ErrBadArchiveHeader   = errors.New("bad archive header")
	ErrImportCancelled    = errors.New("import cancelled")
	ErrNoDecoder          = errors.New("no decoder for engine")
)

// Wrap tags err (or a bare condition when err is nil) with the given
// sentinel and component/operation context.
func Wrap(marker error, component, operation string, err error) error {
	detail := buildDetail(component, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the machine-checkable kind string for a surfaced error,
// or "" when the error carries no known sentinel.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrEngineUndetectable):
		return "engine-undetectable"
	case errors.Is(err, ErrBadArchiveHeader):
		return "bad-archive-header"
	case errors.Is(err, ErrImportCancelled):
		return "import-cancelled"
	case errors.Is(err, ErrNoDecoder):
		return "no-decoder-for-engine"
	default:
		return ""
	}
}

func buildDetail(component, operation string) string {
	parts := make([]string, 0, 2)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "import failure"
	}
	return strings.Join(parts, ": ")
}
