package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/brannow/typo3-dev-springboard/internal/app"
	"github.com/caarlos0/env/v11"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse reads SPRINGBOARD_* environment variables and then the command-line
// arguments, which override them. It returns a populated Config, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var cfg app.Config
	if err := env.Parse(&cfg); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("parse env: %v", err)}
	}

	flagSet := flag.NewFlagSet("springboard", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Springboard - Builds a throwaway TYPO3 environment and runs its entry script.

Usage:
  springboard [options] [BLUEPRINT]

Arguments:
  BLUEPRINT
    Path to a single .hcl file or a directory containing .hcl files.

Environment:
  Every option can be preset with SPRINGBOARD_<OPTION>, e.g.
  SPRINGBOARD_INSTALL_DIR or SPRINGBOARD_LOG_LEVEL.

Options:
`)
		flagSet.PrintDefaults()
	}

	blueprintFlag := flagSet.String("blueprint", "", "Path to the blueprint file or directory.")
	bFlag := flagSet.String("b", "", "Path to the blueprint file or directory (shorthand).")
	flagSet.StringVar(&cfg.InstallDir, "install-dir", cfg.InstallDir, "Base directory of the environment. Overrides the blueprint.")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&cfg.Interpreter, "interpreter", cfg.Interpreter, "Program that runs the entry script.")
	flagSet.BoolVar(&cfg.Capture, "capture", cfg.Capture, "Buffer the entry script's output and print it once it exits.")
	flagSet.BoolVar(&cfg.NoHandoff, "no-handoff", cfg.NoHandoff, "Build the environment without running the entry script.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	switch {
	case *blueprintFlag != "":
		cfg.BlueprintPath = *blueprintFlag
	case *bFlag != "":
		cfg.BlueprintPath = *bFlag
	case flagSet.NArg() > 0:
		cfg.BlueprintPath = flagSet.Arg(0)
	}
	slog.Debug("Blueprint path determined.", "path", cfg.BlueprintPath)

	if cfg.BlueprintPath == "" {
		slog.Debug("No blueprint path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
