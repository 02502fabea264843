// Package backup implements the backup command: copy every package of a
// title into the vault unless it is already there.
package backup

import (
	"context"

	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Options configures a backup run
type Options struct {
	runenv.Options
}

// Backup backs up every package of the title, skipping existing backups
func Backup(ctx context.Context, opts Options) (*types.RunReport, error) {
	env, err := runenv.Resolve(opts.Options, false)
	if err != nil {
		return nil, err
	}

	report := env.NewReport(types.ModeBackup)
	for _, pkg := range env.Profile.Packages {
		if err := ctx.Err(); err != nil {
			return env.Finish(report), err
		}
		made, err := env.Vault.Backup(pkg)
		if err != nil {
			return env.Finish(report), err
		}
		entry := report.Package(pkg)
		entry.BackedUp = made
		entry.HasBackup = true
	}
	return env.Finish(report), nil
}
