// cmd/khbuild/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil memory environment, fake packaging tool, temp
// config directory
// PURPOSE: Test flag handling, config remembering and output of the CLI

package khbuild

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/paths"
	"github.com/arthur-debert/khbuild/pkg/testutil"
	"github.com/arthur-debert/khbuild/pkg/titles"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	env    *testutil.TestEnvironment
	runner *testutil.FakeRunner
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	configDir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, configDir)
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WithPackages(env.ImageDir, titles.KH2.Profile().Packages...)
	env.WithTool()
	env.WithPackageMap(`{"kh2": {"msg/us/sys.bar": ["kh2_first"]}}`)

	return &cli{
		env:    env,
		runner: &testutil.FakeRunner{Handler: testutil.PatchingTool(env.FS)},
		config: filepath.Join(configDir, paths.ConfigFileName),
	}
}

func (c *cli) pathFlags() []string {
	return []string{
		"--game-path", c.env.GamePath,
		"--openkh-path", c.env.OpenKHPath,
		"--work-dir", c.env.WorkDir,
		"--maps-dir", c.env.MapDir,
		"--patches-path", c.env.PatchesDir,
	}
}

func (c *cli) run(args ...string) (string, error) {
	root := newRootCmd(dependencies{fs: c.env.FS, runner: c.runner})
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPatchCommand(t *testing.T) {
	c := newCLI(t)
	c.env.WithModFiles(map[string]string{"msg/us/sys.bar": "mod"})

	out, err := c.run(append([]string{"patch", "--format", "text"}, c.pathFlags()...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "patch kh2 (us)")
	assert.Contains(t, out, "kh2_first\t1\tnew\tyes")
	assert.Contains(t, out, "kh2_second\t-\tnew\t-")
	require.Len(t, c.runner.Calls, 1)
	assert.Equal(t, testutil.PatchedContent("kh2_first", types.PackageDataExt),
		c.env.ReadFile(filepath.Join(c.env.ImageDir, "kh2_first.pkg")))
}

func TestPatchCommand_RemembersPaths(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(append([]string{"backup", "--format", "text"}, c.pathFlags()...)...)
	require.NoError(t, err)

	saved, err := os.ReadFile(c.config)
	require.NoError(t, err)
	assert.Contains(t, string(saved), c.env.GamePath)

	// The second run finds everything through the saved config
	out, err := c.run("status", "--format", "json")
	require.NoError(t, err)

	var report types.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, types.ModeStatus, report.Mode)
	require.Len(t, report.Packages, len(titles.KH2.Profile().Packages))
	assert.True(t, report.Packages[0].HasBackup)
}

func TestPatchCommand_SwitchesApplyToOneRun(t *testing.T) {
	c := newCLI(t)
	c.env.WithModFiles(map[string]string{"msg/us/sys.bar": "mod"})
	stagingDir := filepath.Join(c.env.WorkDir, paths.StagingDirName)

	args := append([]string{"patch", "--keep-staging", "--fail-on-missing", "--strict-checksum=false", "--format", "text"}, c.pathFlags()...)
	_, err := c.run(args...)
	require.NoError(t, err)
	assert.True(t, filesystem.DirExists(c.env.FS, stagingDir))

	saved, err := os.ReadFile(c.config)
	require.NoError(t, err)
	assert.Contains(t, string(saved), c.env.GamePath)
	for _, key := range []string{"keep_staging", "fail_on_missing", "strict_checksum"} {
		assert.NotContains(t, string(saved), key)
	}

	// The paths come from the saved config, the switches do not
	out, err := c.run("patch", "--format", "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "staging tree kept")
	assert.False(t, filesystem.DirExists(c.env.FS, stagingDir))
	assert.Len(t, c.runner.Calls, 2)
}

func TestPatchCommand_FailOnMissing(t *testing.T) {
	c := newCLI(t)
	c.env.WithModFiles(map[string]string{"data/unknown.bin": "x"})

	out, err := c.run(append([]string{"patch", "--fail-on-missing", "--format", "text"}, c.pathFlags()...)...)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPath))
	assert.Contains(t, out, "warning: data/unknown.bin", "the partial report is still printed")
	assert.Empty(t, c.runner.Calls)
	assert.NoFileExists(t, c.config, "failed runs are not remembered")
}

func TestCommand_ConfigErrors(t *testing.T) {
	t.Run("unknown_title", func(t *testing.T) {
		c := newCLI(t)
		_, err := c.run(append([]string{"status", "--title", "kh9"}, c.pathFlags()...)...)
		assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownTitle))
	})

	t.Run("missing_config_file", func(t *testing.T) {
		c := newCLI(t)
		_, err := c.run("status", "--config", filepath.Join(t.TempDir(), "nope.toml"))
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("remember_disabled", func(t *testing.T) {
		c := newCLI(t)
		cfg := filepath.Join(t.TempDir(), "khbuild.toml")
		require.NoError(t, os.WriteFile(cfg, []byte("remember = false\n"), 0644))

		_, err := c.run(append([]string{"backup", "--format", "text", "--config", cfg}, c.pathFlags()...)...)
		require.NoError(t, err)

		saved, err := os.ReadFile(cfg)
		require.NoError(t, err)
		assert.Equal(t, "remember = false\n", string(saved))
	})

	t.Run("bad_format", func(t *testing.T) {
		c := newCLI(t)
		_, err := c.run(append([]string{"status", "--format", "xml"}, c.pathFlags()...)...)
		assert.ErrorContains(t, err, "invalid --format")
	})
}

func TestTitlesCommand(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("titles", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "| kh2 | Kingdom Hearts II Final Mix | 6 | kh2 |")
	assert.Contains(t, out, "| kh3d | Dream Drop Distance HD | 4 | ddd |")

	out, err = c.run("titles", "--format", "json")
	require.NoError(t, err)
	var infos []titleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(titles.All()))
}

func TestMiscCommands(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "khbuild version")

	out, err = c.run("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "khbuild")

	out, err = c.run("man")
	require.NoError(t, err)
	assert.Contains(t, out, "KHBUILD")

	_, err = c.run()
	assert.EqualError(t, err, MsgErrNoCommand)
}
