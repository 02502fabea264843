package khbuild

import (
	"os"

	"github.com/arthur-debert/khbuild/pkg/commands"
	"github.com/arthur-debert/khbuild/pkg/config"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/arthur-debert/khbuild/pkg/style"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names
const (
	flagVerbose        = "verbose"
	flagConfig         = "config"
	flagFormat         = "format"
	flagTitle          = "title"
	flagRegion         = "region"
	flagOpenKHPath     = "openkh-path"
	flagGamePath       = "game-path"
	flagExtractedPath  = "extracted-path"
	flagPatchesPath    = "patches-path"
	flagWorkDir        = "work-dir"
	flagMapsDir        = "maps-dir"
	flagStrictChecksum = "strict-checksum"
	flagKeepStaging    = "keep-staging"
	flagFailOnMissing  = "fail-on-missing"
)

// settingFlags maps flags to the config keys they override. Only flags
// the user actually set take part, so unset flags never hide the config
// file or the environment.
var settingFlags = map[string]string{
	flagTitle:          config.KeyTitle,
	flagRegion:         config.KeyRegion,
	flagOpenKHPath:     config.KeyOpenKHPath,
	flagGamePath:       config.KeyGamePath,
	flagExtractedPath:  config.KeyExtractedPath,
	flagPatchesPath:    config.KeyPatchesPath,
	flagWorkDir:        config.KeyWorkDir,
	flagMapsDir:        config.KeyMapsDir,
	flagStrictChecksum: config.KeyStrictChecksum,
	flagKeepStaging:    config.KeyKeepStaging,
	flagFailOnMissing:  config.KeyFailOnMissing,
}

func addSettingFlags(flags *pflag.FlagSet) {
	flags.String(flagTitle, "", MsgFlagTitle)
	flags.String(flagRegion, "", MsgFlagRegion)
	flags.String(flagOpenKHPath, "", MsgFlagOpenKHPath)
	flags.String(flagGamePath, "", MsgFlagGamePath)
	flags.String(flagExtractedPath, "", MsgFlagExtractedPath)
	flags.String(flagPatchesPath, "", MsgFlagPatchesPath)
	flags.String(flagWorkDir, "", MsgFlagWorkDir)
	flags.String(flagMapsDir, "", MsgFlagMapsDir)
	flags.Bool(flagStrictChecksum, false, MsgFlagStrictChecksum)
}

// settings is the resolved configuration of one invocation
type settings struct {
	cfg        *config.Config
	configFile string
	// overrides holds the setting flags given on the command line
	overrides map[string]interface{}
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	overrides := map[string]interface{}{}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := settingFlags[f.Name]
		if ok && f.Changed {
			overrides[key] = f.Value.String()
		}
	})

	configFile, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      overrides,
	})
	if err != nil {
		return nil, err
	}
	return &settings{
		cfg:        cfg,
		configFile: config.UserFilePath(configFile),
		overrides:  overrides,
	}, nil
}

func (s *settings) paths() (*paths.Paths, error) {
	return paths.New(paths.Options{
		WorkDir:            s.cfg.Paths.Work,
		OpenKHPath:         s.cfg.Paths.OpenKH,
		GamePath:           s.cfg.Paths.Game,
		PatchesPath:        s.cfg.Paths.Patches,
		ExtractedGamesPath: s.cfg.Paths.Extracted,
		ToolPath:           s.cfg.Paths.Tool,
	})
}

func (s *settings) runOptions(p *paths.Paths, deps dependencies) commands.RunOptions {
	return commands.RunOptions{
		Title:          s.cfg.Title,
		Region:         s.cfg.Region,
		Paths:          p,
		MapsDir:        s.cfg.Paths.Maps,
		StrictChecksum: s.cfg.Patch.StrictChecksum,
		Launcher:       s.cfg.Tool.Launcher,
		FS:             deps.fs,
		Runner:         deps.runner,
	}
}

// remember writes the title, region and paths given on the command line
// back to the config file when the config asks for it
func (s *settings) remember() (bool, error) {
	if !s.cfg.Remember {
		return false, nil
	}
	return config.Remember(s.configFile, s.overrides)
}

func outputFormat(cmd *cobra.Command) (style.Format, error) {
	value, _ := cmd.Flags().GetString(flagFormat)
	format, err := style.ParseFormat(value)
	if err != nil {
		return format, err
	}
	if format != style.FormatAuto {
		return format, nil
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return style.DetectFormat(f), nil
	}
	return style.FormatText, nil
}
