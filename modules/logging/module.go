// Package logging provides the `log` natives through which a program writes
// to the order log.
package logging

import (
	"context"

	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
)

const Name = "log"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	for _, level := range []orderlog.Level{orderlog.Info, orderlog.Warn, orderlog.Error} {
		r.Register(Name, string(level), &registry.Handler{
			Params: []registry.Param{
				{Name: "msg", Kind: registry.KindAny},
				{Name: "env", Kind: registry.KindEnv},
				{Name: "span", Kind: registry.KindSpan},
			},
			Fn: write(level),
		})
	}
}

func write(level orderlog.Level) registry.Func {
	return func(ctx context.Context, args registry.Args) (any, error) {
		span := args.Span(2)
		args.Env(1).Log(ctx, orderlog.Entry{
			Level: level,
			Msg:   orderlog.Truncate(args.Value(0).String()),
			User:  true,
			Span:  &span,
		})
		return nil, nil
	}
}
