// Package pkgmap loads the package maps and resolves translated paths to
// the packages that must contain them.
//
// A map file holds one section per title, each mapping a relative path to
// the list of package ids containing it. The base map is produced from
// the game's own indexes; the extras map adds or replaces entries for
// files some patches ship that the base map lacks. Extras always win for
// a path present in both.
package pkgmap

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/translate"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Entries maps a canonical relative path to its packages
type Entries map[string][]types.PackageID

// Map is the merged, read-only package map of one title
type Map struct {
	title   string
	entries Entries
}

// New builds a Map from already parsed entries. Keys are canonicalized.
func New(title string, entries Entries) *Map {
	m := &Map{title: title, entries: make(Entries, len(entries))}
	m.overlay(entries)
	return m
}

// Load reads the base and extras maps for title. A missing extras file is
// not an error; a missing base file is.
func Load(fs types.FS, title, basePath, extrasPath string) (*Map, error) {
	base, err := readFile(fs, title, basePath)
	if err != nil {
		return nil, err
	}

	m := New(title, base)

	if extrasPath == "" {
		return m, nil
	}
	if _, statErr := fs.Stat(extrasPath); statErr != nil {
		return m, nil
	}
	extras, err := readFile(fs, title, extrasPath)
	if err != nil {
		return nil, err
	}
	m.overlay(extras)

	return m, nil
}

// overlay replaces entries for every path in extras
func (m *Map) overlay(extras Entries) {
	for path, pkgs := range extras {
		m.entries[translate.Normalize(path)] = dedupe(pkgs)
	}
}

// Resolve returns the packages containing path, or nil. It never fails;
// callers decide whether an unresolved path is fatal.
func (m *Map) Resolve(path string) []types.PackageID {
	pkgs, ok := m.entries[translate.Normalize(path)]
	if !ok {
		return nil
	}
	out := make([]types.PackageID, len(pkgs))
	copy(out, pkgs)
	return out
}

// Title returns the title section the map was loaded from
func (m *Map) Title() string {
	return m.title
}

// Len returns the number of mapped paths
func (m *Map) Len() int {
	return len(m.entries)
}

// Paths returns all mapped paths, sorted
func (m *Map) Paths() []string {
	paths := make([]string, 0, len(m.entries))
	for p := range m.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func dedupe(pkgs []types.PackageID) []types.PackageID {
	seen := make(map[types.PackageID]bool, len(pkgs))
	out := make([]types.PackageID, 0, len(pkgs))
	for _, p := range pkgs {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func readFile(fs types.FS, title, path string) (Entries, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read package map %s", path).
			WithDetail("path", path)
	}

	var entries Entries
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = parseYAML(data, title)
	case ".toml":
		entries, err = parseTOML(data, title)
	default:
		entries, err = parseJSON(data, title)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse package map %s", path).
			WithDetail("path", path)
	}
	return entries, nil
}
