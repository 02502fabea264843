// pkg/logging/logging_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test logger setup and helper functions

package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogFilePath(t *testing.T) {
	t.Run("respects_xdg_state_home", func(t *testing.T) {
		stateHome := t.TempDir()
		t.Setenv("XDG_STATE_HOME", stateHome)

		got := getLogFilePath()
		assert.Equal(t, filepath.Join(stateHome, "khbuild", "khbuild.log"), got)
	})

	t.Run("falls_back_to_xdg_default", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")

		got := getLogFilePath()
		assert.Equal(t, filepath.Join(xdg.StateHome, "khbuild", LogFileName), got)
	})
}

func TestSetupLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "khbuild.log")

	f, err := setupLogFile(logPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.FileExists(t, logPath)
}

func TestLogToolCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	LogToolCommand(logger, "OpenKh.Command.IdxImg.exe", []string{"hed", "patch"})

	output := buf.String()
	assert.Contains(t, output, `"tool":"OpenKh.Command.IdxImg.exe"`)
	assert.Contains(t, output, `"args":["hed","patch"]`)
	assert.Contains(t, output, "Running packaging tool")
}

type pkgID string

func (p pkgID) String() string { return string(p) }

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	base := zerolog.New(&buf)

	first := ForRun(base, "kh2", "us")
	first.Info().Msg("one")
	second := ForPackage(first, pkgID("kh2_first"))
	second.Info().Msg("two")
	third := ForRun(base, "kh2", "us")
	third.Info().Msg("three")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var entries []map[string]interface{}
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}

	assert.Equal(t, "kh2", entries[0][FieldTitle])
	assert.Equal(t, "us", entries[0][FieldRegion])
	assert.NotEmpty(t, entries[0][FieldRun])
	assert.Equal(t, entries[0][FieldRun], entries[1][FieldRun], "package loggers keep the run id")
	assert.Equal(t, "kh2_first", entries[1][FieldPackage])
	assert.Nil(t, entries[0][FieldPackage])
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{5, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	done := LogOperationStart(logger, "staging")
	done()

	output := buf.String()
	assert.Contains(t, output, "Operation started")
	assert.Contains(t, output, "Operation completed")
	assert.Contains(t, output, "staging")
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := GetLogger("backup")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"backup"`)
}
