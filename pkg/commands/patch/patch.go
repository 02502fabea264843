// Package patch implements the patch command: stage the mod tree and
// patch archives, then rebuild every staged package from a pristine copy.
package patch

import (
	"context"

	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/dispatch"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/staging"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Options configures a patch run
type Options struct {
	runenv.Options

	// PatchExt selects patch archives, ".kh2pcpatch" when empty
	PatchExt      string
	KeepStaging   bool
	FailOnMissing bool
}

// Patch runs the full patch flow:
//
//  1. resolve the title, package directory, tool and maps
//  2. stage (unresolved paths abort here under FailOnMissing)
//  3. back up every package of the title that has no backup yet
//  4. restore every package, so patches always apply to pristine files
//  5. patch each staged package and install the result
//  6. remove the staging tree unless it is kept
//
// A failure after step 2 leaves completed work in place.
func Patch(ctx context.Context, opts Options) (*types.RunReport, error) {
	env, err := runenv.Resolve(opts.Options, true)
	if err != nil {
		return nil, err
	}
	done := logging.LogOperationStart(env.Logger, "patch")
	defer done()

	pkgMap, err := env.LoadMap()
	if err != nil {
		return nil, err
	}

	report := env.NewReport(types.ModePatch)

	builder := staging.New(staging.Options{
		FS:            env.FS,
		Translator:    env.Profile.Translator(env.FS, env.Paths.ModDir(), env.Region, env.Logger),
		Map:           pkgMap,
		ModDir:        env.Paths.ModDir(),
		PatchesDir:    env.Paths.PatchesDir(),
		PatchExt:      opts.PatchExt,
		StagingDir:    env.Paths.StagingDir(),
		StrictMissing: opts.FailOnMissing,
		Keep:          opts.KeepStaging,
		Title:         env.Profile.Name,
		Region:        env.Region,
		Logger:        env.Logger,
	})

	result, err := builder.Build(ctx)
	if result != nil {
		report.Warnings = append(report.Warnings, result.Warnings...)
	}
	if err != nil {
		_, _ = builder.Clean()
		return env.Finish(report), err
	}

	for _, pkg := range result.Packages {
		if !env.Profile.HasPackage(pkg) {
			_, _ = builder.Clean()
			return env.Finish(report), errors.Newf(errors.ErrUnknownPackage,
				"staged package %s does not belong to %s", pkg, env.Profile.Key).
				WithDetail("package", pkg.String())
		}
		report.Package(pkg).StagedFiles = result.Files[pkg]
	}

	copied, err := env.Vault.BackupAll(env.Profile.Packages)
	for _, pkg := range copied {
		report.Package(pkg).BackedUp = true
	}
	if err != nil {
		return env.Finish(report), err
	}

	if err := env.Vault.RestoreAll(env.Profile.Packages); err != nil {
		return env.Finish(report), err
	}
	for _, pkg := range env.Profile.Packages {
		report.Package(pkg).Restored = true
	}

	dispatcher := dispatch.New(dispatch.Options{
		FS:         env.FS,
		Runner:     env.Runner,
		PackageDir: env.PackageDir,
		StagingDir: env.Paths.StagingDir(),
		OutputDir:  env.Paths.OutputDir(),
		Logger:     env.Logger,
	})
	patched, err := dispatcher.Patch(ctx, result.Packages)
	for _, pkg := range patched {
		report.Package(pkg).Patched = true
	}
	if err != nil {
		return env.Finish(report), err
	}

	removed, err := builder.Clean()
	if err != nil {
		return env.Finish(report), err
	}
	if !removed {
		report.StagingDir = builder.Dir()
	}

	env.Logger.Info().
		Int("patched", len(patched)).
		Int("warnings", len(report.Warnings)).
		Msg("Patch complete")
	return env.Finish(report), nil
}
