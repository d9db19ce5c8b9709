package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/parser"
)

// Program is a parsed source file.
type Program struct {
	Path   string
	Source string
	Tree   *ast.Program
}

// Load reads and parses the program at path. When parsing fails the returned
// Program still carries the source so the error can be rendered against it.
func (a *App) Load(ctx context.Context, path string) (*Program, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading program...", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	prog := &Program{Path: path, Source: string(raw)}
	tree, err := parser.Parse(prog.Source)
	if err != nil {
		return prog, err
	}
	prog.Tree = tree

	logger.Debug("Program parsed.",
		"globals", len(tree.Globals),
		"functions", len(tree.Functions),
		"statements", len(tree.Actions.Stmts),
	)
	return prog, nil
}
