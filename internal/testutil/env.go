package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/channel"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/value"
	"github.com/stretchr/testify/require"
)

// Env is a registry.Env for calling natives outside of a running order.
type Env struct {
	Chans  *channel.Registry
	Client router.Client
	Out    SafeBuffer
	Rec    orderlog.Recorder
}

// NewEnv returns an Env whose router always answers status.
func NewEnv(status router.Status) *Env {
	return &Env{
		Chans:  channel.NewRegistry(),
		Client: router.StaticClient{Status: status},
	}
}

func (e *Env) Channels() *channel.Registry { return e.Chans }

func (e *Env) Router() router.Client { return e.Client }

func (e *Env) Stdout() io.Writer { return &e.Out }

func (e *Env) Log(ctx context.Context, entry orderlog.Entry) { e.Rec.Log(ctx, entry) }

// Invoke registers mod in a fresh registry and calls `module.name` with
// positional args, as a program would.
func Invoke(ctx context.Context, t *testing.T, mod registry.Module, env registry.Env, module, name string, args ...value.Value) (value.Value, error) {
	t.Helper()

	reg := registry.New()
	reg.RegisterModules(mod)
	require.NoError(t, reg.Validate())
	h, ok := reg.Resolve(module, name)
	require.True(t, ok, "native %s.%s is not registered", module, name)

	call := registry.Call{Env: env, Span: CallSpan}
	for _, a := range args {
		call.Args = append(call.Args, registry.Arg{Value: a, Span: CallSpan})
	}
	return h.Invoke(ctx, call)
}

// CallSpan is the call site used by Invoke.
var CallSpan = ast.Span{
	Start: ast.Location{Line: 3, Column: 5},
	End:   ast.Location{Line: 3, Column: 20},
}
