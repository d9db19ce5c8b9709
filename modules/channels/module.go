// Package channels provides the `channel` natives that create and close
// channels.
package channels

import (
	"context"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
)

const Name = "channel"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, "new", &registry.Handler{
		Params: []registry.Param{
			{Name: "buffer", Kind: registry.KindNumber},
			{Name: "env", Kind: registry.KindEnv},
		},
		Fn: newChannel,
	})
	r.Register(Name, "close", &registry.Handler{
		Params: []registry.Param{
			{Name: "ch", Kind: registry.KindChannel},
			{Name: "env", Kind: registry.KindEnv},
		},
		Fn: closeChannel,
	})
}

func newChannel(_ context.Context, args registry.Args) (any, error) {
	buffer := args.Number(0)
	if !(buffer >= 1) {
		return nil, evalerr.Fatalf("the buffer size for a channel must be at least `1`, but `%v` given", buffer)
	}
	id, err := args.Env(1).Channels().Create(int(buffer))
	if err != nil {
		return nil, evalerr.Fatalf("%v", err)
	}
	return id, nil
}

func closeChannel(_ context.Context, args registry.Args) (any, error) {
	id := args.Channel(0)
	ch, ok := args.Env(1).Channels().Get(id)
	if !ok {
		return nil, evalerr.Fatalf("channel `%d` not found", uint64(id))
	}
	ch.Close()
	return nil, nil
}
