// Package fileset snapshots a selected game folder as a set of
// canonically named files with lazy content reads. Detection and every
// decoder operate on this snapshot rather than the filesystem directly,
// which keeps iteration order deterministic and makes in-memory fixtures
// trivial in tests.
package fileset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Set is an immutable snapshot of a folder. Paths are normalized
// (forward slashes, lower case, relative to the root) and sorted.
type Set struct {
	paths   []string
	entries map[string]entry
}

type entry struct {
	load func() ([]byte, error)
}

// FromDir walks root and snapshots every regular file beneath it.
func FromDir(root string) (*Set, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	set := &Set{entries: make(map[string]entry)}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		norm := normalize(rel)
		full := p
		set.entries[norm] = entry{load: func() ([]byte, error) { return os.ReadFile(full) }}
		set.paths = append(set.paths, norm)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(set.paths)
	return set, nil
}

// FromMemory builds a set from literal contents, keyed by relative path.
func FromMemory(files map[string][]byte) *Set {
	set := &Set{entries: make(map[string]entry, len(files))}
	for name, content := range files {
		norm := normalize(name)
		data := content
		set.entries[norm] = entry{load: func() ([]byte, error) { return data, nil }}
		set.paths = append(set.paths, norm)
	}
	sort.Strings(set.paths)
	return set
}

// Paths returns all normalized paths in sorted order. The returned slice
// must not be mutated.
func (s *Set) Paths() []string { return s.paths }

// Len reports the number of files in the snapshot.
func (s *Set) Len() int { return len(s.paths) }

// Has reports whether the normalized path exists in the snapshot.
func (s *Set) Has(norm string) bool {
	_, ok := s.entries[normalize(norm)]
	return ok
}

// Read loads the content of one file by normalized path.
func (s *Set) Read(norm string) ([]byte, error) {
	e, ok := s.entries[normalize(norm)]
	if !ok {
		return nil, fmt.Errorf("no such file %q in set", norm)
	}
	return e.load()
}

func normalize(name string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	p = strings.ToLower(p)
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
