// Package engine identifies which RPG-authoring tool produced a folder
// of game files. Detection inspects file names only; it performs no I/O
// and never fails, reporting TagAuto when nothing matches.
package engine

import (
	"fmt"
	"strings"
)

// Tag names one recognized engine. TagAuto is the undetermined sentinel
// and is never a valid extraction target.
type Tag string

const (
	TagAuto      Tag = "auto"
	TagRM2003    Tag = "rm2003"
	TagRMXP      Tag = "rmXP"
	TagRMVX      Tag = "rmVX"
	TagRMVXAce   Tag = "rmVXAce"
	TagRMMV      Tag = "rmMV"
	TagRMMVCrypt Tag = "rmMV-encrypted"
	TagRMMZ      Tag = "rmMZ"
	TagRMMZCrypt Tag = "rmMZ-encrypted"
	TagTCOAAL    Tag = "tcoaal"
)

var allTags = []Tag{
	TagAuto, TagRM2003, TagRMXP, TagRMVX, TagRMVXAce,
	TagRMMV, TagRMMVCrypt, TagRMMZ, TagRMMZCrypt, TagTCOAAL,
}

// Parse maps a user-supplied engine name to a Tag, case-insensitively.
func Parse(s string) (Tag, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return TagAuto, nil
	}
	for _, tag := range allTags {
		if strings.EqualFold(trimmed, string(tag)) {
			return tag, nil
		}
	}
	return TagAuto, fmt.Errorf("unknown engine %q", s)
}

// String returns the canonical tag spelling.
func (t Tag) String() string { return string(t) }

// Detection is the immutable result of engine identification.
type Detection struct {
	Engine    Tag
	AssetRoot string
	Encrypted bool
}
