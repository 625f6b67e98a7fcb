package imerr_test

import (
	"errors"
	"fmt"
	"testing"

	"reliquary/internal/imerr"
)

func TestKindClassifiesWrappedErrors(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{imerr.Wrap(imerr.ErrEngineUndetectable, "importer", "detect", nil), "engine-undetectable"},
		{imerr.Wrap(imerr.ErrBadArchiveHeader, "rgss", "open game.rgssad", errors.New("short read")), "bad-archive-header"},
		{imerr.Wrap(imerr.ErrImportCancelled, "importer", "", nil), "import-cancelled"},
		{imerr.Wrap(imerr.ErrNoDecoder, "importer", "build pipeline", nil), "no-decoder-for-engine"},
		{errors.New("plain"), ""},
	}
	for _, tc := range cases {
		if got := imerr.Kind(tc.err); got != tc.kind {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.kind)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("directory table truncated")
	err := imerr.Wrap(imerr.ErrBadArchiveHeader, "rgss", "parse directory", cause)
	if !errors.Is(err, imerr.ErrBadArchiveHeader) {
		t.Fatal("sentinel lost")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if imerr.Kind(wrapped) != "bad-archive-header" {
		t.Fatal("kind lost through extra wrapping")
	}
}
