// Package handoff transfers control to the generated environment's entry
// script by running it as a child process.
package handoff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
)

// DefaultInterpreter runs the entry script when none is configured.
const DefaultInterpreter = "php"

// EntryPointNotFoundError is returned when the hand-off artifact is missing.
type EntryPointNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e EntryPointNotFoundError) Error() string {
	return "entry point not found: " + e.Path
}

// Options configures one hand-off.
type Options struct {
	// Interpreter runs the script. Empty executes the script directly.
	Interpreter string
	// Env is appended to the current process environment.
	Env []string
	// Dir is the working directory; it defaults to the script's directory.
	Dir string
	// Capture returns stdout instead of writing it to Stdout.
	Capture bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// Locate verifies that script exists and is a regular file.
func Locate(script string) error {
	info, err := os.Stat(script)
	if err != nil || info.IsDir() {
		return EntryPointNotFoundError{Path: script}
	}
	return nil
}

// Run executes script and waits for it. With Capture set the script's stdout
// is returned; otherwise it streams to opts.Stdout (os.Stdout when nil) and
// the returned string is empty. A non-zero exit is returned as an error
// wrapping *exec.ExitError.
func Run(ctx context.Context, script string, opts Options) (string, error) {
	logger := ctxlog.FromContext(ctx)

	if err := Locate(script); err != nil {
		return "", err
	}
	// The child runs in opts.Dir, so a relative script path would no longer
	// resolve.
	if abs, err := filepath.Abs(script); err == nil {
		script = abs
	}

	var cmd *exec.Cmd
	if opts.Interpreter == "" {
		cmd = exec.CommandContext(ctx, script)
	} else {
		cmd = exec.CommandContext(ctx, opts.Interpreter, script)
	}
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(script)
	}
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	var captured bytes.Buffer
	switch {
	case opts.Capture:
		cmd.Stdout = &captured
	case opts.Stdout != nil:
		cmd.Stdout = opts.Stdout
	default:
		cmd.Stdout = os.Stdout
	}

	logger.Info("Handing off to entry point.", "script", script, "interpreter", opts.Interpreter, "capture", opts.Capture)
	if err := cmd.Run(); err != nil {
		return captured.String(), fmt.Errorf("running %s: %w", script, err)
	}
	logger.Debug("Entry point finished.", "script", script, "bytes", captured.Len())
	return captured.String(), nil
}
