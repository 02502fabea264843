// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dirs), environment variables
// PURPOSE: Test configuration layering and remembering settings

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("KHBUILD_CONFIG_DIR", dir)
	t.Setenv(EnvConfigFile, "")
	for _, key := range Keys {
		t.Setenv(EnvPrefix+envName(key), "")
		require.NoError(t, os.Unsetenv(EnvPrefix+envName(key)))
	}
	return dir
}

func envName(key string) string {
	out := []byte(key)
	for i, c := range out {
		switch {
		case c == '.':
			out[i] = '_'
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "kh2", cfg.Title)
	assert.Equal(t, "us", cfg.Region)
	assert.True(t, cfg.Remember)
	assert.Equal(t, ".kh2pcpatch", cfg.Patch.Extension)
	assert.False(t, cfg.Patch.KeepStaging)
	assert.Empty(t, cfg.Tool.Launcher)
}

func TestLoad_Layering(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
title = "bbs"
region = "fr"

[paths]
openkh = "/opt/openkh"
game = "/games/kh"

[patch]
keep_staging = true
`), 0644))

	t.Setenv("KHBUILD_REGION", "uk")
	t.Setenv("KHBUILD_PATHS_GAME", "/env/game")
	t.Setenv("KHBUILD_TOOL_LAUNCHER", "wine,--quiet")
	t.Setenv("KHBUILD_UNRELATED", "x")

	cfg, err := Load(LoadOptions{Flags: map[string]interface{}{
		KeyGamePath:      "/flag/game",
		KeyFailOnMissing: true,
	}})
	require.NoError(t, err)

	assert.Equal(t, "bbs", cfg.Title, "user file over defaults")
	assert.Equal(t, "uk", cfg.Region, "environment over user file")
	assert.Equal(t, "/opt/openkh", cfg.Paths.OpenKH)
	assert.Equal(t, "/flag/game", cfg.Paths.Game, "flags over environment")
	assert.Equal(t, []string{"wine", "--quiet"}, cfg.Tool.Launcher)
	assert.True(t, cfg.Patch.KeepStaging)
	assert.True(t, cfg.Patch.FailOnMissing)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit_file_missing", func(t *testing.T) {
		isolate(t)
		_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "none.toml")})
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("invalid_toml", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("title = "), 0644))
		_, err := Load(LoadOptions{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
	})
}

func TestRemember(t *testing.T) {
	t.Run("merges_into_existing_file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("remember = true\n\n[patch]\nextension = \".zip\"\n"), 0644))

		written, err := Remember(path, map[string]interface{}{
			KeyGamePath:       "/games/kh",
			KeyRegion:         "jp",
			KeyKeepStaging:    "true",
			KeyFailOnMissing:  "true",
			KeyStrictChecksum: "true",
		})
		require.NoError(t, err)
		assert.True(t, written)

		cfg, err := Load(LoadOptions{ConfigFile: path})
		require.NoError(t, err)
		assert.Equal(t, "/games/kh", cfg.Paths.Game)
		assert.Equal(t, "jp", cfg.Region)
		assert.Equal(t, ".zip", cfg.Patch.Extension, "existing entries are kept")
		assert.False(t, cfg.Patch.KeepStaging, "run switches are not remembered")
		assert.False(t, cfg.Patch.FailOnMissing)
		assert.False(t, cfg.Patch.StrictChecksum)
	})

	t.Run("creates_missing_file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "nested", "config.toml")

		written, err := Remember(path, map[string]interface{}{KeyOpenKHPath: "/opt/openkh"})
		require.NoError(t, err)
		assert.True(t, written)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "/opt/openkh")
		assert.NotContains(t, string(data), "keep_staging")
	})

	t.Run("switches_only_write_nothing", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.toml")

		written, err := Remember(path, map[string]interface{}{KeyKeepStaging: "true"})
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoFileExists(t, path)
	})

	t.Run("environment_values_are_not_written", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "config.toml")
		t.Setenv("KHBUILD_PATHS_PATCHES", "/env/patches")

		_, err := Remember(path, map[string]interface{}{KeyGamePath: "/games/kh"})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "/env/patches")
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "patch.keep_staging", envKey("KHBUILD_PATCH_KEEP_STAGING"))
	assert.Equal(t, "paths.openkh", envKey("KHBUILD_PATHS_OPENKH"))
	assert.Equal(t, "", envKey("KHBUILD_CONFIG_DIR"))
	assert.Equal(t, "", envKey("KHBUILD_WORK_DIR"))
}
