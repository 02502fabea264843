// Package restore implements the restore command: copy every backed up
// package of a title over the live files.
package restore

import (
	"context"

	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Options configures a restore run
type Options struct {
	runenv.Options
}

// Restore restores every package of the title in order. It fails with
// NO_BACKUP at the first package without a backup; earlier packages stay
// restored.
func Restore(ctx context.Context, opts Options) (*types.RunReport, error) {
	env, err := runenv.Resolve(opts.Options, false)
	if err != nil {
		return nil, err
	}

	report := env.NewReport(types.ModeRestore)
	for _, pkg := range env.Profile.Packages {
		if err := ctx.Err(); err != nil {
			return env.Finish(report), err
		}
		if err := env.Vault.Restore(pkg); err != nil {
			return env.Finish(report), err
		}
		report.Package(pkg).Restored = true
	}
	return env.Finish(report), nil
}
