package khbuild

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Patch Kingdom Hearts PC packages with OpenKH mods"
	MsgPatchShort      = "Stage mods and patch archives and rebuild the affected packages"
	MsgRestoreShort    = "Restore the backed up packages of a title"
	MsgBackupShort     = "Back up the packages of a title"
	MsgExtractShort    = "Extract the packages of a title"
	MsgStatusShort     = "Show backup and checksum status per package"
	MsgBackupLong      = "Copy every package of the selected title into the backup folder. Existing backups are never overwritten."
	MsgStatusLong      = "Show for every package of the selected title whether a backup exists and whether the live file still matches the shipped checksum. Nothing is changed."
	MsgTitlesShort     = "List the supported titles"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgConfigSaved   = "Remembered settings in %s\n"
	MsgManWritten    = "Wrote man pages to %s\n"
	MsgVersionFormat = "khbuild version %s\n  commit: %s\n  built:  %s\n"
	MsgTitlesHeader  = "| Title | Name | Packages | Extracts to |\n|---|---|---|---|\n"
	MsgTitlesRow     = "| %s | %s | %d | %s |\n"

	// Error messages
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrInitPaths  = "failed to initialize paths: %w"
	MsgErrPatch      = "patch failed: %w"
	MsgErrRestore    = "restore failed: %w"
	MsgErrBackup     = "backup failed: %w"
	MsgErrExtract    = "extraction failed: %w"
	MsgErrStatus     = "failed to get package status: %w"
	MsgErrRender     = "failed to render report: %w"
	MsgErrFormat     = "invalid --format: %w"
	MsgErrSaveConfig = "failed to remember settings: %w"
	MsgErrNoCommand  = "no command specified"
	MsgErrManPages   = "failed to generate man pages: %w"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig         = "Config file (default $XDG_CONFIG_HOME/khbuild/config.toml)"
	MsgFlagFormat         = "Output format: auto, term, text or json"
	MsgFlagTitle          = "Title to work on (kh1, kh2, bbs, kh3d, Recom, Movies)"
	MsgFlagRegion         = "Game region (jp, us, uk, it, sp, gr, fr)"
	MsgFlagOpenKHPath     = "OpenKH folder holding the mod folder and the packaging tool"
	MsgFlagGamePath       = "Game install folder (the one containing Image/)"
	MsgFlagExtractedPath  = "Folder extracted games are written to"
	MsgFlagPatchesPath    = "Folder holding patch archives"
	MsgFlagWorkDir        = "Working folder for backups and staging"
	MsgFlagMapsDir        = "Folder holding pkgmap.json and pkgmap_extras.json"
	MsgFlagStrictChecksum = "Fail instead of warn when a package has an unexpected checksum"
	MsgFlagKeepStaging    = "Keep the staging tree after patching"
	MsgFlagFailOnMissing  = "Fail before patching if a mod file maps to no package"
	MsgFlagManDir         = "Write one man page per command into this folder instead of stdout"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/patch-long.txt
	msgPatchLongRaw string
	MsgPatchLong    = strings.TrimSpace(msgPatchLongRaw)

	//go:embed msgs/patch-example.txt
	msgPatchExampleRaw string
	MsgPatchExample    = strings.TrimRight(msgPatchExampleRaw, "\n")

	//go:embed msgs/extract-long.txt
	msgExtractLongRaw string
	MsgExtractLong    = strings.TrimSpace(msgExtractLongRaw)

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
