package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
// Fields are filled from SPRINGBOARD_* environment variables first and then
// overridden by command-line flags.
type Config struct {
	// BlueprintPath is a .hcl file or a directory of them.
	BlueprintPath string `env:"SPRINGBOARD_BLUEPRINT"`
	// InstallDir overrides the blueprint's install_dir when set.
	InstallDir string `env:"SPRINGBOARD_INSTALL_DIR"`

	LogFormat string `env:"SPRINGBOARD_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"SPRINGBOARD_LOG_LEVEL" envDefault:"info"`

	Interpreter string `env:"SPRINGBOARD_INTERPRETER" envDefault:"php"`
	Capture     bool   `env:"SPRINGBOARD_CAPTURE"`
	NoHandoff   bool   `env:"SPRINGBOARD_NO_HANDOFF"`
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BlueprintPath == "" {
		return nil, errors.New("BlueprintPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	return &cfg, nil
}
