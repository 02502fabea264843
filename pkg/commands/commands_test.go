// pkg/commands/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil memory environment, fake packaging tool
// PURPOSE: Test the patch, restore, backup, extract and status flows end
// to end

package commands_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/commands"
	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/testutil"
	"github.com/arthur-debert/khbuild/pkg/titles"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kh2Map = `{
  "kh2": {
    "msg/us/sys.bar": ["kh2_first", "kh2_second"],
    "obj/P_EX100.mdlx": ["kh2_third"]
  }
}`

func setup(t *testing.T) (*testutil.TestEnvironment, *testutil.FakeRunner) {
	t.Helper()
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WithPackages(env.ImageDir, titles.KH2.Profile().Packages...)
	env.WithTool()
	env.WithPackageMap(kh2Map)
	return env, &testutil.FakeRunner{Handler: testutil.PatchingTool(env.FS)}
}

func runOptions(env *testutil.TestEnvironment, runner *testutil.FakeRunner) commands.RunOptions {
	return commands.RunOptions{
		Title:   "kh2",
		Region:  "us",
		Paths:   env.Paths,
		MapsDir: env.MapDir,
		FS:      env.FS,
		Runner:  runner,
		Logger:  zerolog.Nop(),
	}
}

func live(env *testutil.TestEnvironment, file string) string {
	return env.ReadFile(filepath.Join(env.ImageDir, file))
}

func TestPatch_FullFlow(t *testing.T) {
	env, runner := setup(t)
	env.WithModFiles(map[string]string{
		"msg/jp/sys.bar":   "translated message",
		"data/unknown.bin": "no package",
	})
	env.WithPatchArchive("a.kh2pcpatch", testutil.ZipEntry{Name: "kh2_fifth/original/goa.bin", Data: "goa"})

	report, err := commands.Patch(context.Background(), commands.PatchOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)

	assert.Equal(t, types.ModePatch, report.Mode)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "data/unknown.bin", report.Warnings[0].Path)

	require.Len(t, runner.Calls, 3)
	for _, id := range []types.PackageID{"kh2_fifth", "kh2_first", "kh2_second"} {
		assert.Equal(t, testutil.PatchedContent(id, ".pkg"), live(env, id.DataFile()))
		assert.True(t, report.Package(id).Patched)
	}
	assert.Equal(t, testutil.PackageContent("kh2_third", ".pkg"), live(env, "kh2_third.pkg"))
	assert.Equal(t, 1, report.Package("kh2_first").StagedFiles)

	for _, id := range titles.KH2.Profile().Packages {
		assert.True(t, report.Package(id).BackedUp, "every package is backed up on first run")
		assert.Equal(t, testutil.PackageContent(id, ".pkg"),
			env.ReadFile(filepath.Join(env.Paths.BackupDir(), id.DataFile())))
	}

	assert.False(t, filesystem.DirExists(env.FS, env.Paths.StagingDir()), "staging removed")
	assert.Empty(t, report.StagingDir)
}

func TestPatch_SecondRunStartsFromPristine(t *testing.T) {
	env, runner := setup(t)
	env.WithModFiles(map[string]string{"msg/us/sys.bar": "v1"})
	opts := commands.PatchOptions{Options: runOptions(env, runner)}

	_, err := commands.Patch(context.Background(), opts)
	require.NoError(t, err)

	var patchedInputs []string
	patchingTool := testutil.PatchingTool(env.FS)
	runner.Handler = func(args []string) ([]byte, error) {
		patchedInputs = append(patchedInputs, env.ReadFile(args[2]))
		return patchingTool(args)
	}

	report, err := commands.Patch(context.Background(), opts)
	require.NoError(t, err)

	for _, id := range titles.KH2.Profile().Packages {
		assert.False(t, report.Package(id).BackedUp, "existing backups are kept")
		assert.Equal(t, testutil.PackageContent(id, ".pkg"),
			env.ReadFile(filepath.Join(env.Paths.BackupDir(), id.DataFile())))
	}
	for _, input := range patchedInputs {
		assert.Contains(t, input, "original ", "the tool always sees restored packages")
	}
}

func TestPatch_FailOnMissingMutatesNothing(t *testing.T) {
	env, runner := setup(t)
	env.WithModFiles(map[string]string{
		"msg/us/sys.bar":   "x",
		"data/unknown.bin": "no package",
	})
	opts := commands.PatchOptions{Options: runOptions(env, runner), FailOnMissing: true}

	_, err := commands.Patch(context.Background(), opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPath))
	assert.Empty(t, runner.Calls)
	assert.False(t, filesystem.DirExists(env.FS, env.Paths.BackupDir()), "no backup taken")
	assert.Equal(t, testutil.PackageContent("kh2_first", ".pkg"), live(env, "kh2_first.pkg"))
}

func TestPatch_KeepStaging(t *testing.T) {
	env, runner := setup(t)
	env.WithModFiles(map[string]string{"obj/P_EX100.mdlx": "model"})

	report, err := commands.Patch(context.Background(), commands.PatchOptions{
		Options:     runOptions(env, runner),
		KeepStaging: true,
	})
	require.NoError(t, err)

	assert.Equal(t, env.Paths.StagingDir(), report.StagingDir)
	assert.Equal(t, "model", env.ReadFile(filepath.Join(env.Paths.StagingDir(), "kh2_third", "original", "obj", "P_EX100.mdlx")))
	assert.True(t, filesystem.Exists(env.FS, env.Paths.ManifestPath()))
}

func TestPatch_ToolFailureKeepsEarlierPackages(t *testing.T) {
	env, runner := setup(t)
	env.WithModFiles(map[string]string{"msg/us/sys.bar": "x"})
	patchingTool := testutil.PatchingTool(env.FS)
	runner.Handler = func(args []string) ([]byte, error) {
		if filepath.Base(args[2]) == "kh2_second.pkg" {
			return []byte("crash"), stderrors.New("exit status 1")
		}
		return patchingTool(args)
	}

	report, err := commands.Patch(context.Background(), commands.PatchOptions{Options: runOptions(env, runner)})
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolFailure))
	assert.True(t, report.Package("kh2_first").Patched)
	assert.False(t, report.Package("kh2_second").Patched)
	assert.Equal(t, testutil.PatchedContent("kh2_first", ".pkg"), live(env, "kh2_first.pkg"))
}

func TestPatch_ArchiveForForeignPackage(t *testing.T) {
	env, runner := setup(t)
	env.WithPatchArchive("a.kh2pcpatch", testutil.ZipEntry{Name: "bbs_first/original/x.bin", Data: "x"})

	_, err := commands.Patch(context.Background(), commands.PatchOptions{Options: runOptions(env, runner)})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownPackage))
	assert.Empty(t, runner.Calls)
}

func TestPatch_ValidationBeforeMutation(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(t *testing.T, env *testutil.TestEnvironment, opts *commands.RunOptions)
		wantCode errors.ErrorCode
	}{
		{
			name:     "unknown_title",
			modify:   func(_ *testing.T, _ *testutil.TestEnvironment, opts *commands.RunOptions) { opts.Title = "kh4" },
			wantCode: errors.ErrUnknownTitle,
		},
		{
			name:     "unknown_region",
			modify:   func(_ *testing.T, _ *testutil.TestEnvironment, opts *commands.RunOptions) { opts.Region = "br" },
			wantCode: errors.ErrInvalidInput,
		},
		{
			name: "package_dir_missing",
			modify: func(_ *testing.T, _ *testutil.TestEnvironment, opts *commands.RunOptions) {
				opts.Title = "kh3d"
			},
			wantCode: errors.ErrPackageDirMissing,
		},
		{
			name: "tool_missing",
			modify: func(t *testing.T, env *testutil.TestEnvironment, _ *commands.RunOptions) {
				require.NoError(t, env.FS.Remove(env.Paths.ToolPath()))
			},
			wantCode: errors.ErrToolNotFound,
		},
		{
			name: "map_missing",
			modify: func(_ *testing.T, env *testutil.TestEnvironment, opts *commands.RunOptions) {
				opts.MapsDir = filepath.Join(env.Root, "elsewhere")
			},
			wantCode: errors.ErrConfigLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, runner := setup(t)
			opts := runOptions(env, runner)
			tt.modify(t, env, &opts)

			_, err := commands.Patch(context.Background(), commands.PatchOptions{Options: opts})
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
			assert.Empty(t, runner.Calls)
			assert.False(t, filesystem.DirExists(env.FS, env.Paths.BackupDir()))
		})
	}
}

func TestRestore(t *testing.T) {
	t.Run("no_backup", func(t *testing.T) {
		env, runner := setup(t)
		_, err := commands.Restore(context.Background(), commands.RestoreOptions{Options: runOptions(env, runner)})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNoBackup))
	})

	t.Run("after_patch", func(t *testing.T) {
		env, runner := setup(t)
		env.WithModFiles(map[string]string{"msg/us/sys.bar": "x"})
		_, err := commands.Patch(context.Background(), commands.PatchOptions{Options: runOptions(env, runner)})
		require.NoError(t, err)
		require.Equal(t, testutil.PatchedContent("kh2_first", ".hed"), live(env, "kh2_first.hed"))

		report, err := commands.Restore(context.Background(), commands.RestoreOptions{Options: runOptions(env, runner)})
		require.NoError(t, err)
		for _, id := range titles.KH2.Profile().Packages {
			assert.True(t, report.Package(id).Restored)
			assert.Equal(t, testutil.PackageContent(id, ".pkg"), live(env, id.DataFile()))
			assert.Equal(t, testutil.PackageContent(id, ".hed"), live(env, id.IndexFile()))
		}
	})
}

func TestBackup(t *testing.T) {
	env, runner := setup(t)

	report, err := commands.Backup(context.Background(), commands.BackupOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)
	assert.True(t, report.Package("kh2_sixth").BackedUp)

	report, err = commands.Backup(context.Background(), commands.BackupOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)
	assert.False(t, report.Package("kh2_sixth").BackedUp)
	assert.True(t, report.Package("kh2_sixth").HasBackup)

	t.Run("strict_checksum", func(t *testing.T) {
		env, runner := setup(t)
		opts := runOptions(env, runner)
		opts.StrictChecksum = true

		_, err := commands.Backup(context.Background(), commands.BackupOptions{Options: opts})
		assert.True(t, errors.IsErrorCode(err, errors.ErrChecksumMismatch))
	})
}

func TestExtract(t *testing.T) {
	env, runner := setup(t)
	require.NoError(t, env.FS.MkdirAll(env.ExtractedDir, 0755))
	runner.Handler = testutil.ExtractingTool(env.FS, map[string]string{
		"original/msg/us/sys.bar": "msg",
		"remastered/a.dds":        "hd",
	})

	report, err := commands.Extract(context.Background(), commands.ExtractOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)

	assert.Len(t, runner.Calls, 6)
	assert.True(t, report.Package("kh2_first").Extracted)
	assert.Equal(t, "msg", env.ReadFile(filepath.Join(env.ExtractedDir, "kh2", "msg", "us", "sys.bar")))
	assert.Equal(t, "hd", env.ReadFile(filepath.Join(env.ExtractedDir, "kh2", "remastered", "a.dds")))

	t.Run("target_missing", func(t *testing.T) {
		env, runner := setup(t)
		_, err := commands.Extract(context.Background(), commands.ExtractOptions{Options: runOptions(env, runner)})
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})
}

func TestStatus(t *testing.T) {
	env, runner := setup(t)
	_, err := commands.Backup(context.Background(), commands.BackupOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)
	require.NoError(t, env.FS.Remove(filepath.Join(env.ImageDir, "kh2_sixth.pkg")))

	report, err := commands.Status(commands.StatusOptions{Options: runOptions(env, runner)})
	require.NoError(t, err)

	first := report.Package("kh2_first")
	assert.True(t, first.HasBackup)
	require.NotNil(t, first.ChecksumOK)
	assert.False(t, *first.ChecksumOK, "test packages never match shipped checksums")

	assert.Nil(t, report.Package("kh2_sixth").ChecksumOK)
	require.Len(t, report.Warnings, 1)
}
