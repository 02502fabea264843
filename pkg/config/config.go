package config

// Config is the effective configuration of a run
type Config struct {
	Title    string `koanf:"title" toml:"title"`
	Region   string `koanf:"region" toml:"region"`
	Remember bool   `koanf:"remember" toml:"remember"`
	Paths    Paths  `koanf:"paths" toml:"paths"`
	Tool     Tool   `koanf:"tool" toml:"tool"`
	Patch    Patch  `koanf:"patch" toml:"patch"`
}

// Paths holds the user-supplied locations
type Paths struct {
	OpenKH    string `koanf:"openkh" toml:"openkh"`
	Game      string `koanf:"game" toml:"game"`
	Extracted string `koanf:"extracted" toml:"extracted"`
	Patches   string `koanf:"patches" toml:"patches"`
	Work      string `koanf:"work" toml:"work"`
	Tool      string `koanf:"tool" toml:"tool"`
	Maps      string `koanf:"maps" toml:"maps"`
}

// Tool configures how the packaging tool is started
type Tool struct {
	Launcher []string `koanf:"launcher" toml:"launcher"`
}

// Patch holds the switches of a patch run
type Patch struct {
	Extension      string `koanf:"extension" toml:"extension"`
	KeepStaging    bool   `koanf:"keep_staging" toml:"keep_staging"`
	StrictChecksum bool   `koanf:"strict_checksum" toml:"strict_checksum"`
	FailOnMissing  bool   `koanf:"fail_on_missing" toml:"fail_on_missing"`
}

// Keys of the settings flags and environment variables map to
const (
	KeyTitle          = "title"
	KeyRegion         = "region"
	KeyRemember       = "remember"
	KeyOpenKHPath     = "paths.openkh"
	KeyGamePath       = "paths.game"
	KeyExtractedPath  = "paths.extracted"
	KeyPatchesPath    = "paths.patches"
	KeyWorkDir        = "paths.work"
	KeyToolPath       = "paths.tool"
	KeyMapsDir        = "paths.maps"
	KeyToolLauncher   = "tool.launcher"
	KeyPatchExtension = "patch.extension"
	KeyKeepStaging    = "patch.keep_staging"
	KeyStrictChecksum = "patch.strict_checksum"
	KeyFailOnMissing  = "patch.fail_on_missing"
)

// Keys lists every setting key
var Keys = []string{
	KeyTitle, KeyRegion, KeyRemember,
	KeyOpenKHPath, KeyGamePath, KeyExtractedPath, KeyPatchesPath, KeyWorkDir, KeyToolPath, KeyMapsDir,
	KeyToolLauncher,
	KeyPatchExtension, KeyKeepStaging, KeyStrictChecksum, KeyFailOnMissing,
}

// Remembered lists the keys a successful run writes back to the user
// file. Run switches such as patch.keep_staging apply to one run only.
var Remembered = []string{
	KeyTitle, KeyRegion,
	KeyOpenKHPath, KeyGamePath, KeyExtractedPath, KeyPatchesPath, KeyWorkDir, KeyToolPath, KeyMapsDir,
}
