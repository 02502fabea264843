package khbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/khbuild/internal/version"
	"github.com/arthur-debert/khbuild/pkg/commands"
	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/arthur-debert/khbuild/pkg/style"
	"github.com/arthur-debert/khbuild/pkg/titles"
	"github.com/arthur-debert/khbuild/pkg/tool"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// dependencies replaces the real filesystem and packaging tool in tests.
// Zero values select the real ones.
type dependencies struct {
	fs     types.FS
	runner tool.Runner
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(dependencies{})
}

func newRootCmd(deps dependencies) *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "khbuild",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, flagVerbose, "v", MsgFlagVerbose)
	flags.String(flagConfig, "", MsgFlagConfig)
	flags.String(flagFormat, "auto", MsgFlagFormat)
	addSettingFlags(flags)

	_ = rootCmd.RegisterFlagCompletionFunc(flagTitle, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return titles.Keys(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc(flagRegion, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return titles.Regions, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newPatchCmd(deps))
	rootCmd.AddCommand(newRestoreCmd(deps))
	rootCmd.AddCommand(newBackupCmd(deps))
	rootCmd.AddCommand(newExtractCmd(deps))
	rootCmd.AddCommand(newStatusCmd(deps))
	rootCmd.AddCommand(newTitlesCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// prepare loads the settings of cmd and turns them into run options
func prepare(cmd *cobra.Command, deps dependencies) (*settings, commands.RunOptions, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, commands.RunOptions{}, fmt.Errorf(MsgErrLoadConfig, err)
	}
	p, err := s.paths()
	if err != nil {
		return nil, commands.RunOptions{}, fmt.Errorf(MsgErrInitPaths, err)
	}
	log.Debug().
		Str("title", s.cfg.Title).
		Str("game", p.GamePath()).
		Str("openkh", p.OpenKHPath()).
		Str("work", p.WorkDir()).
		Msg("Settings resolved")
	return s, s.runOptions(p, deps), nil
}

// finish prints report, which may be partial when runErr is set, and
// remembers the settings of a successful run
func finish(cmd *cobra.Command, s *settings, report *types.RunReport, runErr error, errMsg string) error {
	if report != nil {
		format, err := outputFormat(cmd)
		if err != nil {
			return fmt.Errorf(MsgErrFormat, err)
		}
		if err := style.RenderReport(cmd.OutOrStdout(), report, format); err != nil {
			return fmt.Errorf(MsgErrRender, err)
		}
	}
	if runErr != nil {
		return fmt.Errorf(errMsg, runErr)
	}

	saved, err := s.remember()
	if err != nil {
		return fmt.Errorf(MsgErrSaveConfig, err)
	}
	if saved {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgConfigSaved, s.configFile)
	}
	return nil
}

func newPatchCmd(deps dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patch",
		Short:   MsgPatchShort,
		Long:    MsgPatchLong,
		Example: MsgPatchExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, opts, err := prepare(cmd, deps)
			if err != nil {
				return err
			}
			report, err := commands.Patch(cmd.Context(), commands.PatchOptions{
				Options:       opts,
				PatchExt:      s.cfg.Patch.Extension,
				KeepStaging:   s.cfg.Patch.KeepStaging,
				FailOnMissing: s.cfg.Patch.FailOnMissing,
			})
			return finish(cmd, s, report, err, MsgErrPatch)
		},
	}
	cmd.Flags().Bool(flagKeepStaging, false, MsgFlagKeepStaging)
	cmd.Flags().Bool(flagFailOnMissing, false, MsgFlagFailOnMissing)
	return cmd
}

func newRestoreCmd(deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "restore",
		Short:   MsgRestoreShort,
		Long:    MsgRestoreLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, opts, err := prepare(cmd, deps)
			if err != nil {
				return err
			}
			report, err := commands.Restore(cmd.Context(), commands.RestoreOptions{Options: opts})
			return finish(cmd, s, report, err, MsgErrRestore)
		},
	}
}

func newBackupCmd(deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, opts, err := prepare(cmd, deps)
			if err != nil {
				return err
			}
			report, err := commands.Backup(cmd.Context(), commands.BackupOptions{Options: opts})
			return finish(cmd, s, report, err, MsgErrBackup)
		},
	}
}

func newExtractCmd(deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "extract",
		Short:   MsgExtractShort,
		Long:    MsgExtractLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, opts, err := prepare(cmd, deps)
			if err != nil {
				return err
			}
			report, err := commands.Extract(cmd.Context(), commands.ExtractOptions{Options: opts})
			return finish(cmd, s, report, err, MsgErrExtract)
		},
	}
}

func newStatusCmd(deps dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, opts, err := prepare(cmd, deps)
			if err != nil {
				return err
			}
			report, err := commands.Status(commands.StatusOptions{Options: opts})
			return finish(cmd, s, report, err, MsgErrStatus)
		},
	}
}

type titleInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Packages    int    `json:"packages"`
	ExtractName string `json:"extractName"`
}

func newTitlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "titles",
		Short:   MsgTitlesShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return fmt.Errorf(MsgErrFormat, err)
			}

			var infos []titleInfo
			var table strings.Builder
			table.WriteString(MsgTitlesHeader)
			for _, p := range titles.All() {
				infos = append(infos, titleInfo{
					Key:         p.Key,
					Name:        p.Name,
					DisplayName: p.DisplayName,
					Packages:    len(p.Packages),
					ExtractName: p.ExtractName,
				})
				fmt.Fprintf(&table, MsgTitlesRow, p.Key, p.DisplayName, len(p.Packages), p.ExtractName)
			}

			out := cmd.OutOrStdout()
			switch format {
			case style.FormatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			case style.FormatTerminal:
				_, err = fmt.Fprint(out, style.NewMarkdownRenderer().Render(table.String()))
			default:
				_, err = fmt.Fprint(out, table.String())
			}
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "KHBUILD",
				Section: "1",
				Source:  "khbuild " + version.Version,
				Manual:  "khbuild manual",
			}
			if dir == "" {
				if err := doc.GenMan(cmd.Root(), header, cmd.OutOrStdout()); err != nil {
					return fmt.Errorf(MsgErrManPages, err)
				}
				return nil
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf(MsgErrManPages, err)
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return fmt.Errorf(MsgErrManPages, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), MsgManWritten, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagManDir)
	return cmd
}
