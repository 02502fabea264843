// Package tool runs the external packaging tool that reads and writes
// package pairs.
//
// The tool is invoked as
//
//	<tool> hed extract <index> -o <out>
//	<tool> hed patch <data> <staging> -o <out>
//
// and signals success with exit code 0. Its combined output is kept so a
// failure can be reported verbatim.
package tool

import (
	"context"
	"os/exec"

	"github.com/arthur-debert/khbuild/pkg/logging"
	"github.com/rs/zerolog"
)

// Runner executes the packaging tool with args and returns its combined
// output. A non-nil error means the tool did not exit cleanly.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// PatchArgs returns the arguments that patch the package data file with
// the staged tree, writing the new pair into outDir
func PatchArgs(dataFile, stagingDir, outDir string) []string {
	return []string{"hed", "patch", dataFile, stagingDir, "-o", outDir}
}

// ExtractArgs returns the arguments that unpack the package behind
// indexFile into outDir
func ExtractArgs(indexFile, outDir string) []string {
	return []string{"hed", "extract", indexFile, "-o", outDir}
}

// ExecRunner runs the tool as a child process
type ExecRunner struct {
	// Path is the tool executable
	Path string
	// Launcher is prepended to the command line, e.g. ["wine"] or
	// ["dotnet"] on systems that cannot run the tool directly
	Launcher []string
	Logger   zerolog.Logger
}

// NewExecRunner creates an ExecRunner for the tool at path
func NewExecRunner(path string, launcher []string, logger zerolog.Logger) *ExecRunner {
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("tool")
	}
	return &ExecRunner{Path: path, Launcher: launcher, Logger: logger}
}

// Run executes the tool and waits for it to exit. No timeout is applied
// beyond ctx.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	name, argv := r.commandLine(args)
	logging.LogToolCommand(r.Logger, name, argv)

	cmd := exec.CommandContext(ctx, name, argv...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, err
	}

	r.Logger.Debug().
		Str(logging.FieldTool, r.Path).
		Str("output", string(output)).
		Msg("Tool finished")
	return output, nil
}

func (r *ExecRunner) commandLine(args []string) (string, []string) {
	if len(r.Launcher) == 0 {
		return r.Path, args
	}
	argv := make([]string, 0, len(r.Launcher)+len(args))
	argv = append(argv, r.Launcher[1:]...)
	argv = append(argv, r.Path)
	argv = append(argv, args...)
	return r.Launcher[0], argv
}
