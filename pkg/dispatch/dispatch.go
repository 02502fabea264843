// Package dispatch feeds staged packages to the packaging tool and
// installs the results over the live package files. It also drives
// extraction of a title's packages into a browsable tree.
package dispatch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/checksum"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/staging"
	"github.com/arthur-debert/khbuild/pkg/tool"
	"github.com/arthur-debert/khbuild/pkg/translate"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

// Options configures a Dispatcher
type Options struct {
	FS     types.FS
	Runner tool.Runner
	// PackageDir is the live package directory of the title
	PackageDir string
	StagingDir string
	// OutputDir is scratch space the tool writes new pairs into
	OutputDir string
	// ExtractDir is scratch space for extraction
	ExtractDir string
	Logger     zerolog.Logger
}

// Dispatcher runs the packaging tool per package
type Dispatcher struct {
	fs         types.FS
	runner     tool.Runner
	packageDir string
	stagingDir string
	outputDir  string
	extractDir string
	logger     zerolog.Logger
}

// New creates a Dispatcher
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("dispatch")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Dispatcher{
		fs:         fs,
		runner:     opts.Runner,
		packageDir: opts.PackageDir,
		stagingDir: opts.StagingDir,
		outputDir:  opts.OutputDir,
		extractDir: opts.ExtractDir,
		logger:     logger,
	}
}

// Patch patches each package in order and returns the packages whose
// live files were replaced. The first failure stops the run; packages
// patched before it stay patched.
func (d *Dispatcher) Patch(ctx context.Context, pkgs []types.PackageID) ([]types.PackageID, error) {
	var patched []types.PackageID
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return patched, err
		}
		if err := d.patchOne(ctx, pkg); err != nil {
			return patched, err
		}
		patched = append(patched, pkg)
	}
	return patched, nil
}

func (d *Dispatcher) patchOne(ctx context.Context, pkg types.PackageID) error {
	logger := logging.ForPackage(d.logger, pkg)

	pkgStaging := filepath.Join(d.stagingDir, pkg.String())
	for _, sub := range []string{translate.RemasteredMarker, staging.OriginalDir} {
		dir := filepath.Join(pkgStaging, sub)
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}

	if err := d.resetDir(d.outputDir); err != nil {
		return err
	}

	liveData, liveIndex := pkg.Pair(d.packageDir)
	logger.Info().Msg("Patching package")
	output, err := d.runner.Run(ctx, tool.PatchArgs(liveData, pkgStaging, d.outputDir)...)
	if err != nil {
		return toolFailure(err, "patch", pkg, output)
	}
	logger.Debug().Str("output", string(output)).Msg("Patch finished")

	outData, outIndex := pkg.Pair(d.outputDir)
	for _, p := range [][2]string{{outData, liveData}, {outIndex, liveIndex}} {
		if !filesystem.Exists(d.fs, p[0]) {
			return errors.Newf(errors.ErrToolFailure, "packaging tool produced no %s", filepath.Base(p[0])).
				WithDetail("package", pkg.String()).
				WithDetail("output", string(output))
		}
		if err := filesystem.CopyFile(d.fs, p[0], p[1]); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to install %s", p[1]).
				WithDetail("package", pkg.String())
		}
	}
	return nil
}

// ExtractOptions selects what Extract unpacks and where
type ExtractOptions struct {
	// Prefix selects index files whose name contains it, case-insensitively
	Prefix string
	// Destination is replaced by the extracted tree
	Destination string
	// Registry verifies each data file before extraction. Nil disables it.
	Registry *checksum.Registry
	Strict   bool
}

// Extract unpacks every matching package of the live package directory
// and moves the result to opts.Destination. It returns the extracted
// packages.
func (d *Dispatcher) Extract(ctx context.Context, opts ExtractOptions) ([]types.PackageID, error) {
	pkgs, err := d.matchingPackages(opts.Prefix)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no packages matching %q in %s", opts.Prefix, d.packageDir)
	}

	if err := d.resetDir(d.extractDir); err != nil {
		return nil, err
	}
	if err := d.fs.RemoveAll(opts.Destination); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to remove previous extraction %s", opts.Destination)
	}

	var extracted []types.PackageID
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}

		data, index := pkg.Pair(d.packageDir)
		if opts.Registry != nil {
			if err := opts.Registry.Check(data, opts.Strict); err != nil {
				return extracted, err
			}
		}

		pkgLogger := logging.ForPackage(d.logger, pkg)
		pkgLogger.Info().Msg("Extracting package")
		output, err := d.runner.Run(ctx, tool.ExtractArgs(index, d.extractDir)...)
		if err != nil {
			return extracted, toolFailure(err, "extract", pkg, output)
		}
		d.logger.Debug().Str("output", string(output)).Msg("Extract finished")
		extracted = append(extracted, pkg)
	}

	if err := d.collectExtraction(opts.Destination); err != nil {
		return extracted, err
	}
	return extracted, nil
}

// collectExtraction nests remastered/ inside original/ and moves the
// result to dest
func (d *Dispatcher) collectExtraction(dest string) error {
	original := filepath.Join(d.extractDir, staging.OriginalDir)
	remastered := filepath.Join(d.extractDir, translate.RemasteredMarker)

	if !filesystem.DirExists(d.fs, original) {
		if err := d.fs.MkdirAll(original, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", original)
		}
	}
	if filesystem.DirExists(d.fs, remastered) {
		if err := filesystem.Move(d.fs, remastered, filepath.Join(original, translate.RemasteredMarker)); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to merge remastered files")
		}
	}
	if err := filesystem.Move(d.fs, original, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move extracted files to %s", dest)
	}
	d.logger.Info().Str("dest", dest).Msg("Extraction complete")
	return nil
}

func (d *Dispatcher) matchingPackages(prefix string) ([]types.PackageID, error) {
	entries, err := d.fs.ReadDir(d.packageDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", d.packageDir)
	}
	prefix = strings.ToLower(prefix)

	var pkgs []types.PackageID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, types.PackageIndexExt) {
			continue
		}
		if !strings.Contains(strings.ToLower(name), prefix) {
			continue
		}
		pkgs = append(pkgs, types.PackageID(strings.TrimSuffix(name, types.PackageIndexExt)))
	}
	return types.SortPackageIDs(pkgs), nil
}

func (d *Dispatcher) resetDir(dir string) error {
	if err := d.fs.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to clear %s", dir)
	}
	if err := d.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}
	return nil
}

func toolFailure(err error, action string, pkg types.PackageID, output []byte) error {
	return errors.Wrapf(err, errors.ErrToolFailure, "%s failed for %s", action, pkg).
		WithDetail("package", pkg.String()).
		WithDetail("output", string(output))
}
