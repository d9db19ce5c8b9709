// Package debug provides `debug.print`, which writes a value's display
// string to the order's standard output.
package debug

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wdlgo/internal/registry"
)

const Name = "debug"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Print writes the display string of its argument and a newline.
func Print(_ context.Context, args registry.Args) (any, error) {
	if _, err := fmt.Fprintln(args.Env(1).Stdout(), args.Value(0).String()); err != nil {
		return nil, fmt.Errorf("failed to print: %w", err)
	}
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, "print", &registry.Handler{
		Params: []registry.Param{
			{Name: "val", Kind: registry.KindAny},
			{Name: "env", Kind: registry.KindEnv},
		},
		Fn: Print,
	})
}
