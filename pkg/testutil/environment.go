// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate test environments with a game install, an OpenKH
// directory and a work directory

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	// Core paths
	Root         string
	GamePath     string
	ImageDir     string
	OpenKHPath   string
	ModDir       string
	WorkDir      string
	PatchesDir   string
	ExtractedDir string
	MapDir       string

	// Core dependencies
	FS    types.FS
	Paths *paths.Paths

	// Environment type
	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{
		t:    t,
		Type: envType,
	}

	switch envType {
	case EnvMemoryOnly:
		env.Root = "/virtual"
		env.FS = NewTestFS()
	case EnvIsolated:
		env.Root = t.TempDir()
		env.FS = filesystem.NewOS()
	}

	env.GamePath = filepath.Join(env.Root, "game", "kh_1.5_2.5")
	env.ImageDir = filepath.Join(env.GamePath, "Image", "en")
	env.OpenKHPath = filepath.Join(env.Root, "openkh")
	env.ModDir = filepath.Join(env.OpenKHPath, paths.ModDirName)
	env.WorkDir = filepath.Join(env.Root, "work")
	env.PatchesDir = filepath.Join(env.Root, "patches")
	env.ExtractedDir = filepath.Join(env.Root, "extracted")
	env.MapDir = filepath.Join(env.Root, "maps")

	for _, dir := range []string{env.ImageDir, env.OpenKHPath, env.WorkDir, env.MapDir} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	p, err := paths.New(paths.Options{
		WorkDir:            env.WorkDir,
		OpenKHPath:         env.OpenKHPath,
		GamePath:           env.GamePath,
		PatchesPath:        env.PatchesDir,
		ExtractedGamesPath: env.ExtractedDir,
	})
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = p

	return env
}

// WriteFile writes content to an absolute path, creating parents
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	if err := env.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := env.FS.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// ReadFile returns the content of an absolute path
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := env.FS.ReadFile(path)
	if err != nil {
		env.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// WithModFiles writes files into the mod tree. Keys are slash separated
// paths relative to the mod root.
func (env *TestEnvironment) WithModFiles(files map[string]string) {
	env.t.Helper()
	for rel, content := range files {
		env.WriteFile(filepath.Join(env.ModDir, filepath.FromSlash(rel)), content)
	}
}

// WithPackages writes a live package pair into dir for every id. The
// content of each file is PackageContent of the id.
func (env *TestEnvironment) WithPackages(dir string, ids ...types.PackageID) {
	env.t.Helper()
	for _, id := range ids {
		data, index := id.Pair(dir)
		env.WriteFile(data, PackageContent(id, types.PackageDataExt))
		env.WriteFile(index, PackageContent(id, types.PackageIndexExt))
	}
}

// WithTool creates an empty packaging tool executable
func (env *TestEnvironment) WithTool() string {
	env.t.Helper()
	env.WriteFile(env.Paths.ToolPath(), "")
	return env.Paths.ToolPath()
}

// WithPackageMap writes the base package map as JSON
func (env *TestEnvironment) WithPackageMap(content string) string {
	env.t.Helper()
	path := filepath.Join(env.MapDir, paths.BaseMapFileName)
	env.WriteFile(path, content)
	return path
}

// WithPatchArchive writes a patch archive into the patches directory
func (env *TestEnvironment) WithPatchArchive(name string, entries ...ZipEntry) string {
	env.t.Helper()
	path := filepath.Join(env.PatchesDir, name)
	WriteZip(env.t, env.FS, path, entries...)
	return path
}

// WithFileTree creates a complete file tree structure under root
func (env *TestEnvironment) WithFileTree(root string, tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, root, tree)
}

// PackageContent is the content WithPackages writes for one file of a pair
func PackageContent(id types.PackageID, ext string) string {
	return "original " + string(id) + ext
}

// FileTree represents a directory structure for testing
type FileTree map[string]interface{}

// createFileTree recursively creates a file tree
func createFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := fs.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fs.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
