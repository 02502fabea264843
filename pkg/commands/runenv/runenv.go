// Package runenv resolves the options shared by every command into the
// components a run works with. Everything here happens before any file
// is mutated.
package runenv

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/khbuild/pkg/backup"
	"github.com/arthur-debert/khbuild/pkg/checksum"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/arthur-debert/khbuild/pkg/pkgmap"
	"github.com/arthur-debert/khbuild/pkg/titles"
	"github.com/arthur-debert/khbuild/pkg/tool"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

// Options are the settings every command takes
type Options struct {
	Title  string
	Region string
	Paths  *paths.Paths
	// MapsDir holds the package maps. Empty searches the default
	// locations.
	MapsDir        string
	StrictChecksum bool
	// Launcher prefixes the packaging tool command line
	Launcher []string

	// FS and Runner default to the real filesystem and process runner
	FS     types.FS
	Runner tool.Runner
	Logger zerolog.Logger
}

// Env is a resolved, validated run environment
type Env struct {
	Profile        *titles.Profile
	Region         string
	Paths          *paths.Paths
	PackageDir     string
	MapsDir        string
	StrictChecksum bool
	FS             types.FS
	Runner         tool.Runner
	Registry       *checksum.Registry
	Vault          *backup.Vault
	Logger         zerolog.Logger

	start time.Time
}

// Resolve validates opts and builds the run environment. requireTool
// makes a missing packaging tool an error.
func Resolve(opts Options, requireTool bool) (*Env, error) {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("commands")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	if opts.Paths == nil {
		return nil, errors.New(errors.ErrInvalidInput, "paths are not configured")
	}

	title := opts.Title
	if title == "" {
		title = titles.DefaultTitle.String()
	}
	profile, err := titles.Lookup(title)
	if err != nil {
		return nil, err
	}

	region := opts.Region
	if region == "" {
		region = profile.RegionDefault
	}
	if err := titles.ValidateRegion(region); err != nil {
		return nil, err
	}
	logger = logging.ForRun(logger, profile.Key, region)

	if opts.Paths.GamePath() == "" {
		return nil, errors.New(errors.ErrInvalidInput, "game path is not configured")
	}
	packageDir := filepath.Clean(profile.PackageDir(opts.Paths.ImageDir()))
	if !filesystem.DirExists(fs, packageDir) {
		return nil, errors.Newf(errors.ErrPackageDirMissing, "package directory %s not found", packageDir).
			WithDetail("path", packageDir).
			WithDetail("title", profile.Key)
	}

	if requireTool {
		toolPath := opts.Paths.ToolPath()
		if toolPath == "" || !filesystem.Exists(fs, toolPath) {
			return nil, errors.Newf(errors.ErrToolNotFound, "%s not found, check the OpenKH path", paths.ToolFileName).
				WithDetail("path", toolPath)
		}
	}

	runner := opts.Runner
	if runner == nil {
		runner = tool.NewExecRunner(opts.Paths.ToolPath(), opts.Launcher, logger)
	}

	registry := checksum.New(checksum.Options{FS: fs, Logger: logger})
	vault := backup.New(backup.Options{
		FS:         fs,
		Dir:        opts.Paths.BackupDir(),
		PackageDir: packageDir,
		Registry:   registry,
		Strict:     opts.StrictChecksum,
		Logger:     logger,
	})

	logger.Debug().
		Str("packageDir", packageDir).
		Msg("Run environment resolved")

	return &Env{
		Profile:        profile,
		Region:         region,
		Paths:          opts.Paths,
		PackageDir:     packageDir,
		MapsDir:        opts.MapsDir,
		StrictChecksum: opts.StrictChecksum,
		FS:             fs,
		Runner:         runner,
		Registry:       registry,
		Vault:          vault,
		Logger:         logger,
		start:          time.Now(),
	}, nil
}

// LoadMap loads the package map of the run's title
func (e *Env) LoadMap() (*pkgmap.Map, error) {
	var base, extras string
	if e.MapsDir != "" {
		dir := paths.ExpandHome(e.MapsDir)
		base = filepath.Join(dir, paths.BaseMapFileName)
		extras = filepath.Join(dir, paths.ExtrasMapFileName)
	} else {
		base, extras = e.Paths.MapFilePaths("")
	}
	m, err := pkgmap.Load(e.FS, e.Profile.Name, base, extras)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug().Str("base", base).Int("entries", m.Len()).Msg("Package map loaded")
	return m, nil
}

// NewReport starts the report of a run in mode
func (e *Env) NewReport(mode types.Mode) *types.RunReport {
	report := &types.RunReport{
		Mode:   mode,
		Title:  e.Profile.Key,
		Region: e.Region,
	}
	for _, pkg := range e.Profile.Packages {
		report.Package(pkg)
	}
	return report
}

// Finish stamps the run duration on report
func (e *Env) Finish(report *types.RunReport) *types.RunReport {
	report.Duration = time.Since(e.start)
	return report
}
