// Package patcharchive reads external patch archives and flattens them
// into a single overlay.
//
// A patch archive is a zip container whose entry paths are relative to
// the staging root. Archives are applied in lexicographic order of their
// file names, so a later archive overrides an earlier one for the same
// path. A zero-length entry is a deletion marker and is never staged.
package patcharchive

import (
	"bytes"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/klauspost/compress/zip"
)

// DefaultExt is the file extension patch archives are recognized by
const DefaultExt = ".kh2pcpatch"

// Collect lists the archives with extension ext directly inside dir,
// sorted by file name. A missing dir yields no archives.
func Collect(fs types.FS, dir, ext string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if ext == "" {
		ext = DefaultExt
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		if _, statErr := fs.Stat(dir); statErr != nil {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list patch archives in %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(path.Ext(e.Name()), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	archives := make([]string, len(names))
	for i, name := range names {
		archives[i] = filepath.Join(dir, name)
	}
	return archives, nil
}

// Flatten reads archives in the given order and returns one entry per
// path, the latest archive winning. Entries are sorted by path.
// Deletion markers are kept so callers can report them.
func Flatten(fs types.FS, archives []string) ([]types.PatchArchiveEntry, error) {
	overlay := make(map[string]types.PatchArchiveEntry)

	for _, archive := range archives {
		entries, err := Read(fs, archive)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			overlay[e.Path] = e
		}
	}

	out := make([]types.PatchArchiveEntry, 0, len(overlay))
	for _, e := range overlay {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Read returns the file entries of one archive in archive order
func Read(fs types.FS, archive string) ([]types.PatchArchiveEntry, error) {
	data, err := fs.ReadFile(archive)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveRead, "failed to read patch archive %s", archive).
			WithDetail("archive", archive)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveRead, "%s is not a valid patch archive", archive).
			WithDetail("archive", archive)
	}

	name := filepath.Base(archive)
	var entries []types.PatchArchiveEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entryPath, ok := cleanEntryPath(f.Name)
		if !ok {
			return nil, errors.Newf(errors.ErrArchiveRead, "entry %q in %s escapes the staging root", f.Name, archive).
				WithDetail("archive", archive)
		}

		content, err := readEntry(f)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrArchiveRead, "failed to read %s from %s", f.Name, archive).
				WithDetail("archive", archive)
		}
		entries = append(entries, types.PatchArchiveEntry{
			Archive: name,
			Path:    entryPath,
			Data:    content,
		})
	}
	return entries, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return io.ReadAll(rc)
}

// cleanEntryPath canonicalizes an entry name to a forward slash path
// relative to the staging root. Names with a ".." segment are rejected.
func cleanEntryPath(name string) (string, bool) {
	p := strings.ReplaceAll(name, `\`, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", false
		}
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "", false
	}
	return p, true
}
