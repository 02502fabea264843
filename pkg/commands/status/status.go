// Package status implements the status command: report for every package
// of a title whether a backup exists and whether the live data file still
// matches its shipped checksum.
package status

import (
	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// Options configures a status run
type Options struct {
	runenv.Options
}

// Status never mutates anything. A live file that is missing is reported
// without a checksum result.
func Status(opts Options) (*types.RunReport, error) {
	env, err := runenv.Resolve(opts.Options, false)
	if err != nil {
		return nil, err
	}

	report := env.NewReport(types.ModeStatus)
	for _, pkg := range env.Profile.Packages {
		entry := report.Package(pkg)
		entry.HasBackup = env.Vault.Has(pkg)

		data, _ := pkg.Pair(env.PackageDir)
		if !filesystem.Exists(env.FS, data) {
			report.Warnings = append(report.Warnings, types.Warning{
				Path:    data,
				Message: "live package file is missing",
			})
			continue
		}
		ok, err := env.Registry.Verify(data)
		if err != nil {
			return env.Finish(report), err
		}
		entry.ChecksumOK = &ok
	}
	return env.Finish(report), nil
}
