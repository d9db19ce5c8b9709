package testutil

import (
	"context"

	"github.com/specialistvlad/wdlgo/internal/registry"
)

// NoOpModule registers `noop.noop()`, which accepts nothing and returns
// null. It is useful for programs that only need some native to call.
type NoOpModule struct{}

func (m *NoOpModule) Register(r *registry.Registry) {
	r.Register("noop", "noop", &registry.Handler{
		Fn: func(context.Context, registry.Args) (any, error) {
			return nil, nil
		},
	})
}
