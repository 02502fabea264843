// Package staging merges the mod tree and patch archives into one staging
// directory per package.
//
// Layout under the staging root:
//
//	<pkg>/original/<path>     conventional files
//	<pkg>/<path>              paths carrying the remastered segment
//	manifest.json             where every staged file came from
//
// The mod tree always wins over patch archives. Among archives the one
// sorting last wins, and an archive entry is only written when nothing
// is staged at its path yet.
package staging

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/internal/hashutil"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/arthur-debert/khbuild/pkg/patcharchive"
	"github.com/arthur-debert/khbuild/pkg/pkgmap"
	"github.com/arthur-debert/khbuild/pkg/translate"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
)

// OriginalDir is the staging subtree for conventional files
const OriginalDir = "original"

// Options configures a Builder
type Options struct {
	FS         types.FS
	Translator *translate.Translator
	Map        *pkgmap.Map
	// ModDir is the primary mod tree. A missing directory is skipped.
	ModDir string
	// PatchesDir holds patch archives. Empty disables archives.
	PatchesDir string
	PatchExt   string
	StagingDir string
	// StrictMissing fails the build when a mod file resolves to no package
	StrictMissing bool
	// Keep leaves the staging tree on disk after Clean
	Keep   bool
	Title  string
	Region string
	Logger zerolog.Logger
}

// Result describes a finished build
type Result struct {
	// Packages are the staged package directories, sorted
	Packages []types.PackageID
	// Files counts staged files per package
	Files      map[types.PackageID]int
	Warnings   []types.Warning
	Unresolved []types.ModFile
	// Deletions counts archive entries skipped as deletion markers
	Deletions int
	// Shadowed counts archive entries skipped because the path was staged
	Shadowed int
	Manifest *Manifest
}

// Builder builds staging trees
type Builder struct {
	fs            types.FS
	translator    *translate.Translator
	pkgMap        *pkgmap.Map
	modDir        string
	patchesDir    string
	patchExt      string
	stagingDir    string
	strictMissing bool
	keep          bool
	title         string
	region        string
	logger        zerolog.Logger
}

// New creates a Builder
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("staging")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	translator := opts.Translator
	if translator == nil {
		translator = translate.New(translate.Options{FS: fs, ModRoot: opts.ModDir, Logger: logger})
	}

	pkgMap := opts.Map
	if pkgMap == nil {
		pkgMap = pkgmap.New(opts.Title, nil)
	}

	ext := opts.PatchExt
	if ext == "" {
		ext = patcharchive.DefaultExt
	}

	return &Builder{
		fs:            fs,
		translator:    translator,
		pkgMap:        pkgMap,
		modDir:        opts.ModDir,
		patchesDir:    opts.PatchesDir,
		patchExt:      ext,
		stagingDir:    opts.StagingDir,
		strictMissing: opts.StrictMissing,
		keep:          opts.Keep,
		title:         opts.Title,
		region:        opts.Region,
		logger:        logger,
	}
}

// Dir returns the staging root
func (b *Builder) Dir() string {
	return b.stagingDir
}

// Build recreates the staging root and fills it from the mod tree and
// then the patch archives. With StrictMissing set, an unresolved mod file
// fails the build with UNRESOLVED_PATH after every file was examined.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	done := logging.LogOperationStart(b.logger, "staging")
	defer done()

	if b.stagingDir == "" {
		return nil, errors.New(errors.ErrInvalidInput, "staging directory is not set")
	}
	if err := b.fs.RemoveAll(b.stagingDir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to clear staging directory %s", b.stagingDir)
	}
	if err := b.fs.MkdirAll(b.stagingDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create staging directory %s", b.stagingDir)
	}

	result := &Result{
		Files:    make(map[types.PackageID]int),
		Manifest: &Manifest{Title: b.title, Region: b.region},
	}

	if err := b.stageModTree(ctx, result); err != nil {
		return nil, err
	}

	if b.strictMissing && len(result.Unresolved) > 0 {
		first := result.Unresolved[0]
		return result, errors.Newf(errors.ErrUnresolvedPath,
			"%d mod files belong to no package, first: %s (original path %s)",
			len(result.Unresolved), first.TranslatedPath, first.RawPath).
			WithDetail("count", len(result.Unresolved)).
			WithDetail("path", first.TranslatedPath).
			WithDetail("original", first.RawPath)
	}

	if err := b.stageArchives(ctx, result); err != nil {
		return nil, err
	}

	packages, err := b.stagedPackages()
	if err != nil {
		return nil, err
	}
	result.Packages = packages

	result.Manifest.Sort()
	if err := b.writeManifest(result.Manifest); err != nil {
		return nil, err
	}

	b.logger.Info().
		Int("packages", len(result.Packages)).
		Int("warnings", len(result.Warnings)).
		Int("shadowed", result.Shadowed).
		Int("deletions", result.Deletions).
		Msg("Staging complete")
	return result, nil
}

// Clean removes the staging root unless the builder keeps it. It reports
// whether the tree was removed.
func (b *Builder) Clean() (bool, error) {
	if b.keep {
		b.logger.Info().Str("dir", b.stagingDir).Msg("Keeping staging directory")
		return false, nil
	}
	if err := b.fs.RemoveAll(b.stagingDir); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to remove staging directory %s", b.stagingDir)
	}
	return true, nil
}

func (b *Builder) stageModTree(ctx context.Context, result *Result) error {
	if b.modDir == "" || !filesystem.DirExists(b.fs, b.modDir) {
		b.logger.Debug().Str("dir", b.modDir).Msg("No mod tree, skipping")
		return nil
	}

	var files []types.ModFile
	err := b.fs.Walk(b.modDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.modDir, path)
		if err != nil {
			return err
		}
		files = append(files, types.ModFile{SourcePath: path, RawPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to walk mod tree %s", b.modDir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RawPath < files[j].RawPath })

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		file.TranslatedPath = b.translator.Translate(file.RawPath)
		pkgs := b.pkgMap.Resolve(file.TranslatedPath)
		if len(pkgs) == 0 {
			b.logger.Warn().
				Str("path", file.TranslatedPath).
				Str("original", file.RawPath).
				Msg("Could not find which package this path belongs to, file not patched")
			result.Warnings = append(result.Warnings, types.Warning{
				Path:     file.TranslatedPath,
				Original: file.RawPath,
				Message:  "no package contains this path",
			})
			result.Unresolved = append(result.Unresolved, file)
			continue
		}

		// Nothing is copied once a strict build is known to fail
		if b.strictMissing && len(result.Unresolved) > 0 {
			continue
		}

		for _, pkg := range pkgs {
			rel := StagedPath(file.TranslatedPath)
			dst := filepath.Join(b.stagingDir, pkg.String(), filepath.FromSlash(rel))
			if err := filesystem.CopyFile(b.fs, file.SourcePath, dst); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to stage %s", file.RawPath).
					WithDetail("package", pkg.String())
			}
			sum, err := hashutil.FileDigest(b.fs, dst)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to hash %s", dst)
			}

			result.Files[pkg]++
			result.Manifest.add(ManifestEntry{
				Package: pkg,
				Path:    rel,
				Source:  SourceModTree,
				Origin:  file.RawPath,
				Digest:  sum,
			})
			b.logger.Trace().
				Str(logging.FieldPackage, pkg.String()).
				Str("path", rel).
				Msg("Staged mod file")
		}
	}
	return nil
}

func (b *Builder) stageArchives(ctx context.Context, result *Result) error {
	archives, err := patcharchive.Collect(b.fs, b.patchesDir, b.patchExt)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		return nil
	}
	b.logger.Info().Strs("archives", archives).Msg("Applying patch archives")

	entries, err := patcharchive.Flatten(b.fs, archives)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDeletion() {
			result.Deletions++
			continue
		}

		dst := filepath.Join(b.stagingDir, filepath.FromSlash(entry.Path))
		if _, statErr := b.fs.Stat(dst); statErr == nil {
			result.Shadowed++
			b.logger.Debug().
				Str("path", entry.Path).
				Str("archive", entry.Archive).
				Msg("Path already staged from the mod tree, skipping archive entry")
			continue
		}

		if err := b.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", entry.Path)
		}
		if err := b.fs.WriteFile(dst, entry.Data, 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to stage %s from %s", entry.Path, entry.Archive)
		}

		pkg, rel := splitPackage(entry.Path)
		result.Files[pkg]++
		result.Manifest.add(ManifestEntry{
			Package: pkg,
			Path:    rel,
			Source:  SourceArchive,
			Origin:  entry.Archive,
			Digest:  digest.FromBytes(entry.Data),
		})
	}
	return nil
}

// stagedPackages lists the package directories under the staging root
func (b *Builder) stagedPackages() ([]types.PackageID, error) {
	entries, err := b.fs.ReadDir(b.stagingDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list staging directory %s", b.stagingDir)
	}
	var pkgs []types.PackageID
	for _, e := range entries {
		if e.IsDir() {
			pkgs = append(pkgs, types.PackageID(e.Name()))
		}
	}
	return types.SortPackageIDs(pkgs), nil
}

func (b *Builder) writeManifest(m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode staging manifest")
	}
	path := filepath.Join(b.stagingDir, paths.ManifestFileName)
	if err := b.fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write staging manifest %s", path)
	}
	return nil
}

// StagedPath returns where a translated path lives inside its package's
// staging directory
func StagedPath(translated string) string {
	if translate.IsRemastered(translated) {
		return translated
	}
	return OriginalDir + "/" + translated
}

func splitPackage(entryPath string) (types.PackageID, string) {
	pkg, rel, found := strings.Cut(entryPath, "/")
	if !found {
		return "", entryPath
	}
	return types.PackageID(pkg), rel
}
