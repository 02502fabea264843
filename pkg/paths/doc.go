// Package paths provides centralized path handling for khbuild.
//
// Every directory khbuild reads from or writes to is described by a
// Paths value built once per run and passed to the components that need
// it. Nothing in khbuild resolves a working location on its own.
//
// # Working directory layout
//
// All persisted and temporary state lives under the work directory:
//
//   - khbuild/      staging tree, one subdirectory per package
//   - backup_pkgs/  backup vault holding original .pkg/.hed pairs
//   - pkgoutput/    scratch output of the packaging tool
//   - extractedout/ scratch output of extraction
//
// The work directory defaults to $XDG_DATA_HOME/khbuild and can be
// overridden with KHBUILD_WORK_DIR or the work_dir setting.
//
// Concurrent runs against the same work directory are not supported: the
// staging, output and backup directories are shared mutable state and no
// locking is performed.
//
// # Game directories
//
// The OpenKH directory holds the packaging tool and the mods manager's
// mod tree (<openkh>/mod). The game directory is the kh_1.5_2.5 install
// folder whose Image/en directory holds most titles' packages; titles
// that live elsewhere apply their own locator on top of ImageDir.
package paths
