// Package backup keeps pristine copies of package pairs in a vault
// directory and restores them on demand.
//
// The presence of both files of a pair in the vault is the only record
// that a backup exists. A pair is copied under temporary names and
// renamed into place, so a failed copy never leaves a half-present pair
// that later runs would trust.
package backup

import (
	"path/filepath"

	"github.com/arthur-debert/khbuild/pkg/checksum"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/internal/hashutil"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

const tempSuffix = ".partial"

// Options configures a Vault
type Options struct {
	FS types.FS
	// Dir is the vault directory
	Dir string
	// PackageDir is the live package directory of the title
	PackageDir string
	// Registry verifies live data files before they are backed up. Nil
	// disables verification.
	Registry *checksum.Registry
	// Strict turns a checksum mismatch into an error
	Strict bool
	Logger zerolog.Logger
}

// Vault backs up and restores package pairs
type Vault struct {
	fs         types.FS
	dir        string
	packageDir string
	registry   *checksum.Registry
	strict     bool
	logger     zerolog.Logger
}

// New creates a Vault
func New(opts Options) *Vault {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("backup")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Vault{
		fs:         fs,
		dir:        opts.Dir,
		packageDir: opts.PackageDir,
		registry:   opts.Registry,
		strict:     opts.Strict,
		logger:     logger,
	}
}

// Dir returns the vault directory
func (v *Vault) Dir() string {
	return v.dir
}

// Has reports whether the vault holds both files of pkg
func (v *Vault) Has(pkg types.PackageID) bool {
	data, index := pkg.Pair(v.dir)
	return filesystem.Exists(v.fs, data) && filesystem.Exists(v.fs, index)
}

// Backup copies the live pair of pkg into the vault. It reports whether a
// copy was made; an existing backup is never overwritten.
func (v *Vault) Backup(pkg types.PackageID) (bool, error) {
	logger := logging.ForPackage(v.logger, pkg)

	if v.Has(pkg) {
		logger.Debug().Msg("Backup already present, skipping")
		return false, nil
	}

	liveData, liveIndex := pkg.Pair(v.packageDir)
	for _, src := range []string{liveData, liveIndex} {
		if !filesystem.Exists(v.fs, src) {
			return false, errors.Newf(errors.ErrSourceMissing, "%s is missing, check the game path", src).
				WithDetail("package", pkg.String()).
				WithDetail("path", src)
		}
	}

	if v.registry != nil {
		if err := v.registry.Check(liveData, v.strict); err != nil {
			return false, err
		}
	}

	if err := v.fs.MkdirAll(v.dir, 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup directory %s", v.dir)
	}

	vaultData, vaultIndex := pkg.Pair(v.dir)
	pairs := [][2]string{{liveData, vaultData}, {liveIndex, vaultIndex}}

	for _, p := range pairs {
		if err := v.copyVerified(p[0], p[1]+tempSuffix); err != nil {
			v.discardTemps(pairs)
			return false, err
		}
	}
	for _, p := range pairs {
		if err := v.fs.Rename(p[1]+tempSuffix, p[1]); err != nil {
			v.discardTemps(pairs)
			return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to finalize backup %s", p[1])
		}
	}

	logger.Info().Str("vault", v.dir).Msg("Backed up package")
	return true, nil
}

// Restore copies the vault pair of pkg over the live files,
// unconditionally
func (v *Vault) Restore(pkg types.PackageID) error {
	vaultData, vaultIndex := pkg.Pair(v.dir)
	for _, src := range []string{vaultData, vaultIndex} {
		if !filesystem.Exists(v.fs, src) {
			return errors.Newf(errors.ErrNoBackup, "no backup of %s found in %s", pkg, v.dir).
				WithDetail("package", pkg.String()).
				WithDetail("path", src)
		}
	}

	liveData, liveIndex := pkg.Pair(v.packageDir)
	for _, p := range [][2]string{{vaultData, liveData}, {vaultIndex, liveIndex}} {
		if err := filesystem.CopyFile(v.fs, p[0], p[1]); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to restore %s", p[1]).
				WithDetail("package", pkg.String())
		}
	}

	logger := logging.ForPackage(v.logger, pkg)
	logger.Info().Msg("Restored package")
	return nil
}

// BackupAll backs up every package in order, stopping at the first
// failure. It returns the packages that were newly copied.
func (v *Vault) BackupAll(pkgs []types.PackageID) ([]types.PackageID, error) {
	var copied []types.PackageID
	for _, pkg := range pkgs {
		made, err := v.Backup(pkg)
		if err != nil {
			return copied, err
		}
		if made {
			copied = append(copied, pkg)
		}
	}
	return copied, nil
}

// RestoreAll restores every package in order, stopping at the first
// failure
func (v *Vault) RestoreAll(pkgs []types.PackageID) error {
	for _, pkg := range pkgs {
		if err := v.Restore(pkg); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vault) copyVerified(src, dst string) error {
	if err := filesystem.CopyFile(v.fs, src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to back up %s", src).
			WithDetail("path", src)
	}

	want, err := hashutil.FileDigest(v.fs, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to hash %s", src)
	}
	got, err := hashutil.FileDigest(v.fs, dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to hash %s", dst)
	}
	if want != got {
		return errors.Newf(errors.ErrFileWrite, "backup copy of %s does not match its source", filepath.Base(src)).
			WithDetail("expected", want.String()).
			WithDetail("actual", got.String())
	}
	return nil
}

func (v *Vault) discardTemps(pairs [][2]string) {
	for _, p := range pairs {
		_ = v.fs.Remove(p[1] + tempSuffix)
	}
}
