package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/klauspost/compress/zip"
)

// ZipEntry is one file of a test patch archive. Empty Data writes a
// zero-length entry.
type ZipEntry struct {
	Name string
	Data string
}

// ZipBytes builds a zip archive holding entries in order
func ZipBytes(t *testing.T, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", e.Name, err)
		}
		if _, err := f.Write([]byte(e.Data)); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip archive holding entries to path
func WriteZip(t *testing.T, fs types.FS, path string, entries ...ZipEntry) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := fs.WriteFile(path, ZipBytes(t, entries...), 0644); err != nil {
		t.Fatalf("Failed to write zip %s: %v", path, err)
	}
}
