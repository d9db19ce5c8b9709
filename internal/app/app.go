package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/wdlgo/internal/config"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	cfg      *Config
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// A nil loader reads HCL files. Configuration and registry problems are
// startup errors and panic.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	bootLogger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), bootLogger)

	if loader == nil {
		loader = config.NewHCLLoader()
	}
	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	cfg.apply(model)
	if err := model.Validate(); err != nil {
		panic(err)
	}

	logger := newLogger(model.Log.Level, model.Log.Format, outW)
	logger.Debug("Configuration loaded.", "files", len(cfg.ConfigPaths), "transport", model.Router.Transport, "vars", len(model.Vars))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "modules", reg.Modules())

	if err := reg.Validate(); err != nil {
		// A handler with an impossible signature is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the effective configuration.
func (a *App) Model() *config.Model {
	return a.model
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
