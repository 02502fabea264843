package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/khbuild/pkg/types"
)

// CopyFile streams src to dst, creating dst's parent directories.
// Package data files run to several gigabytes, so content is never
// loaded into memory.
func CopyFile(fsys types.FS, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := fsys.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// Exists reports whether name exists and is a regular file
func Exists(fsys types.FS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

// DirExists reports whether name exists and is a directory
func DirExists(fsys types.FS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// CopyTree copies every file under src to the same relative path under dst
func CopyTree(fsys types.FS, src, dst string) error {
	return fsys.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fsys.MkdirAll(target, 0755)
		}
		return CopyFile(fsys, path, target)
	})
}

// Move renames src to dst, falling back to copy and delete when a rename
// is not possible, e.g. across devices
func Move(fsys types.FS, src, dst string) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := fsys.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyTree(fsys, src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return fsys.RemoveAll(src)
}
