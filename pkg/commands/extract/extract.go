// Package extract implements the extract command: unpack every package of
// a title into <extracted games path>/<title>.
package extract

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/dispatch"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Options configures an extract run
type Options struct {
	runenv.Options
}

// Extract unpacks the title's packages, replacing any earlier extraction
// of the same title
func Extract(ctx context.Context, opts Options) (*types.RunReport, error) {
	env, err := runenv.Resolve(opts.Options, true)
	if err != nil {
		return nil, err
	}
	done := logging.LogOperationStart(env.Logger, "extract")
	defer done()

	target := env.Paths.ExtractedGamesPath()
	if target == "" || !filesystem.DirExists(env.FS, target) {
		return nil, errors.Newf(errors.ErrNotFound, "path to extract games to does not exist: %q", target).
			WithDetail("path", target)
	}

	report := env.NewReport(types.ModeExtract)
	dispatcher := dispatch.New(dispatch.Options{
		FS:         env.FS,
		Runner:     env.Runner,
		PackageDir: env.PackageDir,
		ExtractDir: env.Paths.ExtractDir(),
		Logger:     env.Logger,
	})

	extracted, err := dispatcher.Extract(ctx, dispatch.ExtractOptions{
		Prefix:      env.Profile.Name,
		Destination: filepath.Join(target, env.Profile.ExtractName),
		Registry:    env.Registry,
		Strict:      env.StrictChecksum,
	})
	for _, pkg := range extracted {
		report.Package(pkg).Extracted = true
	}
	return env.Finish(report), err
}
