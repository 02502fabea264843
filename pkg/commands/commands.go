// Package commands provides high-level command implementations for khbuild.
//
// This package contains the command orchestration layer that coordinates
// between the CLI interface and the staging, backup and dispatch
// components.
//
// Each command is implemented in its own subdirectory:
//   - patch/   - Patch command
//   - restore/ - Restore command
//   - extract/ - Extract command
//   - backup/  - Backup command
//   - status/  - Status command
//   - runenv/  - Shared option resolution and validation
//
// This file re-exports all command functions.
package commands

import (
	"context"

	"github.com/arthur-debert/khbuild/pkg/commands/backup"
	"github.com/arthur-debert/khbuild/pkg/commands/extract"
	"github.com/arthur-debert/khbuild/pkg/commands/patch"
	"github.com/arthur-debert/khbuild/pkg/commands/restore"
	"github.com/arthur-debert/khbuild/pkg/commands/runenv"
	"github.com/arthur-debert/khbuild/pkg/commands/status"
	"github.com/arthur-debert/khbuild/pkg/types"
)

// RunOptions are the settings shared by every command
type RunOptions = runenv.Options

// Patch stages mods and patches and rebuilds the affected packages.
type PatchOptions = patch.Options

func Patch(ctx context.Context, opts PatchOptions) (*types.RunReport, error) {
	return patch.Patch(ctx, opts)
}

// Restore copies backed up packages over the live files.
type RestoreOptions = restore.Options

func Restore(ctx context.Context, opts RestoreOptions) (*types.RunReport, error) {
	return restore.Restore(ctx, opts)
}

// Extract unpacks a title's packages into a browsable tree.
type ExtractOptions = extract.Options

func Extract(ctx context.Context, opts ExtractOptions) (*types.RunReport, error) {
	return extract.Extract(ctx, opts)
}

// Backup copies packages into the vault.
type BackupOptions = backup.Options

func Backup(ctx context.Context, opts BackupOptions) (*types.RunReport, error) {
	return backup.Backup(ctx, opts)
}

// Status reports backups and checksums per package.
type StatusOptions = status.Options

func Status(opts StatusOptions) (*types.RunReport, error) {
	return status.Status(opts)
}
