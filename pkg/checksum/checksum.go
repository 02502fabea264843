// Package checksum holds the known-good hashes of shipped package files
// and verifies live files against them.
package checksum

import (
	"path/filepath"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/internal/hashutil"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

// Current is the md5 of every package file as shipped by the current
// game release
var Current = map[string]string{
	"Recom.pkg":       "f05f21634ad3f14d1943abc16bb06183",
	"Theater.pkg":     "1e08718a47d4aa0776931606e8fc9450",
	"bbs_first.pkg":   "c7623c0459d0b9bb7ba77e966f9d26bc",
	"bbs_fourth.pkg":  "c61f61dd5954d795c03ae17174c15944",
	"bbs_second.pkg":  "a45d032ac2e39637d4cdf54c67b58d1b",
	"bbs_third.pkg":   "1eb46d47c521b4b7f127e3e71428cfa0",
	"kh1_fifth.pkg":   "c5527403cf2b8340bf943e916a2971bc",
	"kh1_first.pkg":   "188acf5c53948e0dbfaf4d3a1b3a88c4",
	"kh1_fourth.pkg":  "00830acd3599236b378208132dbbd538",
	"kh1_second.pkg":  "7eb1206e1568448924fd9d7785f618ea",
	"kh1_third.pkg":   "2489bdf1e8dbaddd2177bd35d9a4eefd",
	"kh2_fifth.pkg":   "94ac4ced450ca269e95cc8f2769131cd",
	"kh2_first.pkg":   "0d886ac09a61e5be53f08200a2f77282",
	"kh2_fourth.pkg":  "c87e2a1aa92bd6c68f473e6ed0fb8f76",
	"kh2_second.pkg":  "815c71a09f2f0eb92985f91334f1beee",
	"kh2_sixth.pkg":   "f095b8f009e004a9d17a4c1ca948620d",
	"kh2_third.pkg":   "48fbdf8354944abf557518ad2e67aa6c",
	"kh3d_first.pkg":  "dbf5819e8dbcd2377df7e5ff79f2cae7",
	"kh3d_fourth.pkg": "7ec4b89a5f9fe47b6f5fb046e710efcd",
	"kh3d_second.pkg": "bb7fa91a01bc56a4307dad6f6769f1c1",
	"kh3d_third.pkg":  "c0f4bd34a14450956cd521842349cd24",
	"Mare.pkg":        "dbc743fef9e9bc7c974619e720082d18",
}

// Superseded holds hashes of files from the 1.0.7 release. A match here
// means the install is outdated, not modified.
var Superseded = map[string]string{
	"kh2_first.pkg":  "b977794bb340dc6c7fad486940af48a4",
	"kh2_fourth.pkg": "d0b7b1417ffc4cc7cec75a878b115adb",
	"kh2_second.pkg": "832454c68a676022c106364c30601927",
	"kh2_sixth.pkg":  "b9c31aa7a3296b9b62d875787baf757f",
	"kh2_third.pkg":  "55ce51115dd0587deb504f57b34d1c6e",
}

// Options configures a Registry
type Options struct {
	// Current and Superseded default to the package-level tables
	Current    map[string]string
	Superseded map[string]string
	FS         types.FS
	Logger     zerolog.Logger
}

// Registry verifies package files against known hashes
type Registry struct {
	current    map[string]string
	superseded map[string]string
	fs         types.FS
	logger     zerolog.Logger
}

// New creates a Registry
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("checksum")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	current := opts.Current
	if current == nil {
		current = Current
	}
	superseded := opts.Superseded
	if superseded == nil {
		superseded = Superseded
	}

	return &Registry{
		current:    current,
		superseded: superseded,
		fs:         fs,
		logger:     logger,
	}
}

// Expected returns the registered hash for a package file name. An
// unregistered name is always an error: it means the wrong title or a
// broken configuration.
func (r *Registry) Expected(filename string) (string, error) {
	sum, ok := r.current[filename]
	if !ok {
		return "", errors.Newf(errors.ErrUnknownPackage, "package %s not found in checksum registry", filename).
			WithDetail("package", filename)
	}
	return sum, nil
}

// Verify hashes the file at path and compares it with the entry for its
// file name. A mismatch returns false without an error; callers decide
// whether that is fatal.
func (r *Registry) Verify(path string) (bool, error) {
	name := filepath.Base(path)
	expected, err := r.Expected(name)
	if err != nil {
		return false, err
	}

	actual, err := hashutil.FileMD5(r.fs, path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrSourceMissing, "failed to read %s", path).
			WithDetail("path", path)
	}

	if actual == expected {
		r.logger.Debug().Str(logging.FieldPackage, name).Msg("Checksum matches")
		return true, nil
	}

	event := r.logger.Warn().
		Str(logging.FieldPackage, name).
		Str("expected", expected).
		Str("actual", actual)
	if old, ok := r.superseded[name]; ok && old == actual {
		event.Msg("Package is from an older game release, update the game")
	} else {
		event.Msg("Package has changed checksum")
	}
	return false, nil
}

// Check verifies path and turns a mismatch into CHECKSUM_MISMATCH when
// strict is set
func (r *Registry) Check(path string, strict bool) error {
	ok, err := r.Verify(path)
	if err != nil {
		return err
	}
	if !ok && strict {
		return errors.Newf(errors.ErrChecksumMismatch, "%s has an invalid checksum, restore the original file and try again", path).
			WithDetail("path", path)
	}
	return nil
}
