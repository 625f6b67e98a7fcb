// Package title recovers a human-readable game title from the config
// artifacts each engine declares. Everything here is best-effort: a
// missing or unreadable source falls through to the next one, ending at
// a name derived from the selected folder.
package title

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/language"

	"reliquary/internal/engine"
	"reliquary/internal/fileset"
)

// Lookup resolves the game title for the detected engine. folderName is
// the base name of the selected directory, used as the last resort.
func Lookup(tag engine.Tag, set *fileset.Set, folderName string) string {
	var candidates []func() (string, bool)
	switch tag {
	case engine.TagRMMV, engine.TagRMMVCrypt, engine.TagTCOAAL:
		candidates = []func() (string, bool){
			func() (string, bool) { return fromSystemJSON(set, "www/data/system.json") },
			func() (string, bool) { return fromPackageJSON(set) },
		}
	case engine.TagRMMZ, engine.TagRMMZCrypt:
		candidates = []func() (string, bool){
			func() (string, bool) { return fromSystemJSON(set, "data/system.json") },
			func() (string, bool) { return fromPackageJSON(set) },
		}
	case engine.TagRMXP, engine.TagRMVX, engine.TagRMVXAce:
		candidates = []func() (string, bool){
			func() (string, bool) { return fromINI(set, "game.ini") },
		}
	case engine.TagRM2003:
		candidates = []func() (string, bool){
			func() (string, bool) { return fromINI(set, "rpg_rt.ini") },
		}
	}
	for _, lookup := range candidates {
		if title, ok := lookup(); ok {
			return title
		}
	}
	return Fallback(folderName)
}

func fromSystemJSON(set *fileset.Set, path string) (string, bool) {
	if !set.Has(path) {
		return "", false
	}
	data, err := set.Read(path)
	if err != nil {
		return "", false
	}
	var doc struct {
		GameTitle string `json:"gameTitle"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	title := strings.TrimSpace(doc.GameTitle)
	return title, title != ""
}

func fromPackageJSON(set *fileset.Set) (string, bool) {
	for _, path := range []string{"package.json", "www/package.json"} {
		if !set.Has(path) {
			continue
		}
		data, err := set.Read(path)
		if err != nil {
			continue
		}
		var doc struct {
			Name   string `json:"name"`
			Window struct {
				Title string `json:"title"`
			} `json:"window"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		if title := strings.TrimSpace(doc.Window.Title); title != "" {
			return title, true
		}
		if name := strings.TrimSpace(doc.Name); name != "" {
			return name, true
		}
	}
	return "", false
}

// fromINI finds a Title= line. 2003-era files predate Unicode and are
// usually Shift-JIS; anything that is not valid UTF-8 is decoded as such.
func fromINI(set *fileset.Set, path string) (string, bool) {
	if !set.Has(path) {
		return "", false
	}
	data, err := set.Read(path)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "title") {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return "", false
		}
		if !utf8.ValidString(value) {
			decoded, err := japanese.ShiftJIS.NewDecoder().String(value)
			if err != nil {
				return "", false
			}
			value = decoded
		}
		return value, true
	}
	return "", false
}

// Fallback derives a display title from a folder name: separators become
// spaces and words are title-cased.
func Fallback(folderName string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range folderName {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Game"
	}
	return cases.Title(language.Und).String(title)
}
