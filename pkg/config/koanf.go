package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

// Environment variables read by the loader
const (
	EnvPrefix     = "KHBUILD_"
	EnvConfigFile = "KHBUILD_CONFIG"
)

// LoadOptions selects the sources layered over the defaults
type LoadOptions struct {
	// ConfigFile overrides the user config location
	ConfigFile string
	// Flags holds explicitly set flag values keyed by setting key
	Flags map[string]interface{}
}

// UserFilePath returns the user config file location: path if set, then
// KHBUILD_CONFIG, then the XDG default
func UserFilePath(path string) string {
	if path != "" {
		return paths.ExpandHome(path)
	}
	if p := os.Getenv(EnvConfigFile); p != "" {
		return paths.ExpandHome(p)
	}
	return paths.ConfigFilePath()
}

// Load builds the effective configuration
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User file, if it exists
	userFile := UserFilePath(opts.ConfigFile)
	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", userFile).
				WithDetail("path", userFile)
		}
	} else if opts.ConfigFile != "" {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", userFile).
			WithDetail("path", userFile)
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Explicit flags
	if len(opts.Flags) > 0 {
		if err := k.Load(confmap.Provider(opts.Flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flags")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// Remember merges the Remembered keys of values into the TOML file at
// path, keeping everything else the file already holds. Values that came
// from the environment or run switches are never written. It reports
// whether the file was written.
func Remember(path string, values map[string]interface{}) (bool, error) {
	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return false, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
	}

	written := 0
	for _, key := range Remembered {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return false, errors.Wrapf(err, errors.ErrConfigSave, "failed to set %s", key)
		}
		written++
	}
	if written == 0 {
		return false, nil
	}

	if err := writeFile(path, k.Raw()); err != nil {
		return false, err
	}
	return true, nil
}

func writeFile(path string, data map[string]interface{}) error {
	content, err := gotoml.Marshal(data)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to encode configuration")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to create config directory for %s", path)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to write config to %s", path).
			WithDetail("path", path)
	}
	return nil
}

// envKey maps KHBUILD_PATCH_KEEP_STAGING to patch.keep_staging. Unknown
// variables map to "" and are ignored.
func envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, key := range Keys {
		if strings.ReplaceAll(key, ".", "_") == name {
			return key
		}
	}
	return ""
}
