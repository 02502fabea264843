// Package logging sets up the zerolog logger shared by every khbuild
// component.
//
// Log lines use a fixed set of field names so a run can be followed in
// the log file: every line of one invocation carries the same run id,
// and lines about one package carry its id under FieldPackage.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Field names shared by all components
const (
	FieldComponent = "component"
	FieldRun       = "run"
	FieldTitle     = "title"
	FieldRegion    = "region"
	FieldPackage   = "package"
	FieldPath      = "path"
	FieldTool      = "tool"
)

// LogFileName is the name of the log file under the XDG state directory
const LogFileName = "khbuild.log"

// SetupLogger configures the global logger for a -v count: warnings by
// default, then info, debug and trace. Console output goes to stderr;
// JSON lines are appended to the log file when it can be opened.
func SetupLogger(verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}}

	logFile := getLogFilePath()
	handle, fileErr := setupLogFile(logFile)
	if fileErr == nil {
		writers = append(writers, handle)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str(FieldPath, logFile).Msg("Logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str(FieldPath, logFile).Msg("Logger initialized")
}

func levelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns the global logger tagged with a component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str(FieldComponent, name).Logger()
}

// ForRun tags logger with a fresh run id and the title and region of one
// invocation
func ForRun(logger zerolog.Logger, title, region string) zerolog.Logger {
	return logger.With().
		Str(FieldRun, newRunID()).
		Str(FieldTitle, title).
		Str(FieldRegion, region).
		Logger()
}

// ForPackage tags logger with a package id
func ForPackage(logger zerolog.Logger, pkg fmt.Stringer) zerolog.Logger {
	return logger.With().Str(FieldPackage, pkg.String()).Logger()
}

// newRunID returns a short id, unique enough to tell runs apart in one
// log file
func newRunID() string {
	return strconv.FormatInt(time.Now().UnixNano()%(1<<40), 36)
}

// getLogFilePath honours XDG_STATE_HOME set after start-up, which the
// xdg package only reads once
func getLogFilePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	return filepath.Join(stateHome, "khbuild", LogFileName)
}

func setupLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// LogToolCommand logs the command line of a packaging tool invocation
func LogToolCommand(logger zerolog.Logger, name string, args []string) {
	logger.Debug().
		Str(FieldTool, name).
		Strs("args", args).
		Msg("Running packaging tool")
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
