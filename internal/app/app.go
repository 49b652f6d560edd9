package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/brannow/typo3-dev-springboard/internal/config"
	"github.com/brannow/typo3-dev-springboard/internal/ctxlog"
	"github.com/brannow/typo3-dev-springboard/internal/feature"
	"github.com/brannow/typo3-dev-springboard/internal/springboard"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	errW      io.Writer
	logger    *slog.Logger
	config    *Config
	blueprint *config.Blueprint
	modules   []feature.Module
}

// NewApp loads the blueprint and returns an App ready to run. Logs go to
// errW; the entry script's output goes to outW. Extra modules bind feature
// kinds beyond the core ones.
func NewApp(outW, errW io.Writer, cfg *Config, loader config.Loader, modules ...feature.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	blueprint, err := loader.Load(ctx, cfg.BlueprintPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load blueprint: %w", err)
	}
	if cfg.InstallDir != "" {
		blueprint.InstallDir = cfg.InstallDir
	}
	logger.Debug("Blueprint loaded.", "install_dir", blueprint.InstallDir)

	return &App{
		outW:      outW,
		errW:      errW,
		logger:    logger,
		config:    cfg,
		blueprint: blueprint,
		modules:   modules,
	}, nil
}

// Blueprint returns the loaded blueprint. This is primarily for testing.
func (a *App) Blueprint() *config.Blueprint {
	return a.blueprint
}

// Run builds the environment and, unless disabled, hands off to its entry
// script.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	b := springboard.New(
		springboard.WithInterpreter(a.config.Interpreter),
		springboard.WithOutput(a.outW, a.errW),
		springboard.WithModules(a.modules...),
	)
	defer func() {
		if err := b.Close(); err != nil {
			a.logger.Warn("Closing the database failed.", "error", err)
		}
	}()

	if err := Apply(b, a.blueprint); err != nil {
		return fmt.Errorf("invalid blueprint: %w", err)
	}
	if err := b.Build(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if a.config.NoHandoff {
		a.logger.Info("Hand-off skipped.")
		return nil
	}

	out, err := b.Finish(ctx, a.config.Capture)
	if a.config.Capture && out != "" {
		if _, werr := io.WriteString(a.outW, out); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return fmt.Errorf("hand-off failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
