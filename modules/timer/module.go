// Package timer provides the `time` natives.
package timer

import (
	"context"
	"math"
	"time"

	"github.com/araddon/dateparse"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/value"
)

const Name = "time"

// Module implements the registry.Module interface for this package. Now
// overrides the clock; nil means time.Now.
type Module struct {
	Now func() time.Time
}

func (m *Module) Register(r *registry.Registry) {
	now := m.Now
	if now == nil {
		now = time.Now
	}

	r.Register(Name, "sleep", &registry.Handler{
		Params: []registry.Param{{Name: "millis", Kind: registry.KindNumber}},
		Fn:     sleep,
	})
	r.Register(Name, "now", &registry.Handler{
		Fn: func(context.Context, registry.Args) (any, error) {
			return now().UnixMilli(), nil
		},
	})
	r.Register(Name, "parse", &registry.Handler{
		Params: []registry.Param{{Name: "text", Kind: registry.KindString}},
		Fn:     parse,
	})
}

// sleep pauses the calling task. Negative durations do not sleep at all.
func sleep(ctx context.Context, args registry.Args) (any, error) {
	millis := args.Number(0)
	if math.IsNaN(millis) || millis <= 0 {
		return nil, nil
	}
	timer := time.NewTimer(time.Duration(millis * float64(time.Millisecond)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// parse reads a date in any common layout and returns it as unix
// milliseconds, or null when the text is not a date.
func parse(ctx context.Context, args registry.Args) (any, error) {
	text := args.String(0)
	t, err := dateparse.ParseAny(text)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Text is not a date.", "text", text, "error", err)
		return value.Null{}, nil
	}
	return t.UnixMilli(), nil
}
