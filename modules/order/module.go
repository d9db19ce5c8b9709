// Package order provides `order.done` and `order.cancel`, which end the
// running order early with a distinguished outcome.
package order

import (
	"context"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
)

const Name = "order"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, "done", &registry.Handler{
		Params: []registry.Param{{Name: "span", Kind: registry.KindSpan}},
		Fn:     terminate(evalerr.OrderDone),
	})
	r.Register(Name, "cancel", &registry.Handler{
		Params: []registry.Param{{Name: "span", Kind: registry.KindSpan}},
		Fn:     terminate(evalerr.OrderCancel),
	})
}

func terminate(kind evalerr.Kind) registry.Func {
	return func(_ context.Context, args registry.Args) (any, error) {
		return nil, evalerr.New(kind).At(args.Span(0))
	}
}
