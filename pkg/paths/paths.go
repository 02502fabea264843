package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/khbuild/pkg/errors"
)

// Environment variable names
const (
	// EnvWorkDir overrides the work directory
	EnvWorkDir = "KHBUILD_WORK_DIR"

	// EnvConfigDir overrides the XDG config directory for khbuild
	EnvConfigDir = "KHBUILD_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the work directory and the game folders.
// IMPORTANT: an existing backup is found by these names on later runs,
// so they are not user-configurable.
const (
	AppDirName     = "khbuild"
	StagingDirName = "khbuild"
	BackupDirName  = "backup_pkgs"
	OutputDirName  = "pkgoutput"
	ExtractDirName = "extractedout"

	ConfigFileName   = "config.toml"
	ManifestFileName = "manifest.json"

	ModDirName   = "mod"
	ToolFileName = "OpenKh.Command.IdxImg.exe"

	BaseMapFileName   = "pkgmap.json"
	ExtrasMapFileName = "pkgmap_extras.json"
)

// Options holds the user-supplied locations a Paths is built from
type Options struct {
	WorkDir            string
	OpenKHPath         string
	GamePath           string
	PatchesPath        string
	ExtractedGamesPath string
	ToolPath           string
}

// Paths resolves every location a run touches
type Paths struct {
	workDir            string
	configDir          string
	openKHPath         string
	gamePath           string
	patchesPath        string
	extractedGamesPath string
	toolPath           string
}

// New creates a Paths from opts. Empty locations stay empty, except the
// work directory which falls back to KHBUILD_WORK_DIR and then to
// $XDG_DATA_HOME/khbuild.
func New(opts Options) (*Paths, error) {
	p := &Paths{
		openKHPath:         expandHome(opts.OpenKHPath),
		gamePath:           expandHome(opts.GamePath),
		patchesPath:        expandHome(opts.PatchesPath),
		extractedGamesPath: expandHome(opts.ExtractedGamesPath),
		toolPath:           expandHome(opts.ToolPath),
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.Getenv(EnvWorkDir)
	}
	if workDir == "" {
		workDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	abs, err := filepath.Abs(expandHome(workDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for work dir %s", workDir)
	}
	p.workDir = abs
	p.configDir = ConfigDir()

	return p, nil
}

// ConfigDir returns the XDG config directory for khbuild, respecting
// KHBUILD_CONFIG_DIR
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFilePath returns the default location of the user config file
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// WorkDir returns the root of all khbuild working state
func (p *Paths) WorkDir() string {
	return p.workDir
}

// StagingDir returns the root of the per-package staging trees
func (p *Paths) StagingDir() string {
	return filepath.Join(p.workDir, StagingDirName)
}

// BackupDir returns the backup vault directory
func (p *Paths) BackupDir() string {
	return filepath.Join(p.workDir, BackupDirName)
}

// OutputDir returns the packaging tool's scratch output directory
func (p *Paths) OutputDir() string {
	return filepath.Join(p.workDir, OutputDirName)
}

// ExtractDir returns the scratch directory used by extraction
func (p *Paths) ExtractDir() string {
	return filepath.Join(p.workDir, ExtractDirName)
}

// ManifestPath returns where the staging manifest is written
func (p *Paths) ManifestPath() string {
	return filepath.Join(p.StagingDir(), ManifestFileName)
}

// ConfigDir returns the config directory this Paths was built with
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// OpenKHPath returns the OpenKH installation directory
func (p *Paths) OpenKHPath() string {
	return p.openKHPath
}

// ModDir returns the mods manager's mod tree
func (p *Paths) ModDir() string {
	if p.openKHPath == "" {
		return ""
	}
	return filepath.Join(p.openKHPath, ModDirName)
}

// ToolPath returns the packaging tool executable. An explicit tool path
// wins over the one inside the OpenKH directory.
func (p *Paths) ToolPath() string {
	if p.toolPath != "" {
		return p.toolPath
	}
	if p.openKHPath == "" {
		return ""
	}
	return filepath.Join(p.openKHPath, ToolFileName)
}

// GamePath returns the game installation directory
func (p *Paths) GamePath() string {
	return p.gamePath
}

// ImageDir returns <game>/Image/en, the directory most titles keep their
// packages in
func (p *Paths) ImageDir() string {
	if p.gamePath == "" {
		return ""
	}
	return filepath.Join(p.gamePath, "Image", "en")
}

// PatchesDir returns the optional directory of patch archives
func (p *Paths) PatchesDir() string {
	return p.patchesPath
}

// ExtractedGamesPath returns where extracted title trees are placed
func (p *Paths) ExtractedGamesPath() string {
	return p.extractedGamesPath
}

// MapFilePaths returns the base and extras package map locations. The
// first candidate directory holding a base map wins: dir, then the config
// directory, then the executable's directory. When none holds one, the
// paths inside the first candidate are returned so the caller reports a
// meaningful missing file.
func (p *Paths) MapFilePaths(dir string) (base, extras string) {
	var candidates []string
	if dir != "" {
		candidates = append(candidates, expandHome(dir))
	}
	candidates = append(candidates, p.configDir)
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exe))
	}

	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(c, BaseMapFileName)); err == nil {
			return filepath.Join(c, BaseMapFileName), filepath.Join(c, ExtrasMapFileName)
		}
	}
	return filepath.Join(candidates[0], BaseMapFileName), filepath.Join(candidates[0], ExtrasMapFileName)
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
