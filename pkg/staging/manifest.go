package staging

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/opencontainers/go-digest"
)

// Source kinds recorded in the manifest
const (
	SourceModTree = "mod"
	SourceArchive = "archive"
)

// ManifestEntry records where one staged file came from
type ManifestEntry struct {
	Package types.PackageID `json:"package"`
	// Path is relative to the package's staging directory
	Path   string        `json:"path"`
	Source string        `json:"source"`
	Origin string        `json:"origin"`
	Digest digest.Digest `json:"digest"`
}

// Manifest lists every staged file of a run
type Manifest struct {
	Title   string          `json:"title"`
	Region  string          `json:"region"`
	Entries []ManifestEntry `json:"entries"`
}

func (m *Manifest) add(e ManifestEntry) {
	m.Entries = append(m.Entries, e)
}

// Sort orders entries by package, then path
func (m *Manifest) Sort() {
	sort.Slice(m.Entries, func(i, j int) bool {
		if m.Entries[i].Package != m.Entries[j].Package {
			return m.Entries[i].Package < m.Entries[j].Package
		}
		return m.Entries[i].Path < m.Entries[j].Path
	})
}

// Marshal returns the manifest as indented JSON
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest reads a manifest written by Marshal
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
