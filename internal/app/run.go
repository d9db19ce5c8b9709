package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/config"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/interpreter"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/value"
	"gopkg.in/yaml.v3"
)

// Run starts the order described by prog and waits for it to finish.
// assignments are `name=<json>` global overrides from the command line; they
// win over the vars file, which wins over the configuration's vars.
func (a *App) Run(ctx context.Context, prog *Program, assignments []string) error {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "program", prog.Path)
	a.logger.Debug("App.Run method started.", "path", prog.Path)

	overrides, err := a.overrides(assignments)
	if err != nil {
		return err
	}

	if a.cfg.HealthcheckPort > 0 {
		health, err := a.startHealthcheckServer(a.cfg.HealthcheckPort)
		if err != nil {
			return err
		}
		defer func() { _ = health.close() }()
	}

	client, release, err := a.newRouter(ctx)
	if err != nil {
		return err
	}
	defer release()

	order, err := interpreter.StartOrder(ctx, prog.Tree, overrides, interpreter.Options{
		Registry: a.registry,
		Router:   client,
		Stdout:   a.outW,
		Logs:     orderlog.SlogSink{Logger: a.logger},
	})
	if err != nil {
		return err
	}

	a.logger.Info("🚀 Starting order...", "path", prog.Path)
	err = order.Run(ctx)
	a.logger.Info("🏁 Order finished.", "path", prog.Path)

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) overrides(assignments []string) (map[string]value.Value, error) {
	var fileVars map[string]value.Value
	if a.cfg.VarsFile != "" {
		vars, err := config.LoadVarsFile(a.cfg.VarsFile, os.Getenv)
		if err != nil {
			return nil, err
		}
		fileVars = vars
		a.logger.Debug("Vars file loaded.", "path", a.cfg.VarsFile, "vars", len(vars))
	}

	cliVars := make(map[string]value.Value, len(assignments))
	for _, arg := range assignments {
		name, v, err := config.ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		cliVars[name] = v
	}

	return config.MergeVars(a.model.Vars, fileVars, cliVars), nil
}

// Compile formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Compile writes the program tree next to the source as `<file>.compiled`
// and returns the written path.
func (a *App) Compile(ctx context.Context, prog *Program, format string) (string, error) {
	logger := ctxlog.FromContext(ctxlog.WithLogger(ctx, a.logger))

	out, err := EncodeTree(prog.Tree, format)
	if err != nil {
		return "", err
	}

	path := prog.Path + ".compiled"
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write compiled program: %w", err)
	}
	logger.Info("Program compiled.", "path", path, "format", format, "bytes", len(out))
	return path, nil
}

// EncodeTree serialises a program tree as JSON or YAML.
func EncodeTree(tree *ast.Program, format string) ([]byte, error) {
	doc := ast.Tree(tree)
	switch format {
	case "", FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode program: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode program: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compile format %q (must be json or yaml)", format)
	}
}
