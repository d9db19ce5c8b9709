package interpreter

import (
	"context"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/scope"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// resolve looks an identifier up in the scope chain, then among the user
// functions and finally among the natives. Module scoped identifiers skip
// the first two steps.
func (o *Order) resolve(sc *scope.Scope, id *ast.Identifier) (value.Value, error) {
	if len(id.Scope) == 0 {
		if v, ok := sc.Get(id.Name); ok {
			return v, nil
		}
		if _, ok := o.functions[id.Name]; ok {
			return &value.Function{Name: id.Name}, nil
		}
		return nil, evalerr.NotFound(id.Name).At(id.Span)
	}

	module := strings.Join(id.Scope, "::")
	if _, ok := o.registry.Resolve(module, id.Name); ok {
		return &value.Function{Module: module, Name: id.Name}, nil
	}
	return nil, evalerr.NotFound(id.FullName()).At(id.Span)
}

// nativeMember resolves `log.info` to the native `log::info` when `log`
// is not a variable but a native module.
func (o *Order) nativeMember(sc *scope.Scope, e *ast.Member) (*value.Function, bool) {
	id, ok := e.Object.(*ast.Identifier)
	if !ok || len(id.Scope) != 0 || !o.registry.HasModule(id.Name) {
		return nil, false
	}
	if _, bound := sc.Get(id.Name); bound {
		return nil, false
	}
	if _, ok := o.registry.Resolve(id.Name, e.Name); !ok {
		return nil, false
	}
	return &value.Function{Module: id.Name, Name: e.Name}, true
}

func (o *Order) evalCall(ctx context.Context, sc *scope.Scope, e *ast.Call) (value.Value, error) {
	callee, err := o.eval(ctx, sc, e.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*value.Function)
	if !ok {
		return nil, evalerr.InvalidTypef("`%s`()", value.TypeName(callee)).At(e.Callee.Range())
	}

	if fn.Module == "" {
		decl, ok := o.functions[fn.Name]
		if !ok {
			return nil, evalerr.Fatalf("function `%s` not found", fn.Name).At(e.Callee.Range())
		}
		return o.callUser(ctx, sc, decl, e)
	}

	h, ok := o.registry.Resolve(fn.Module, fn.Name)
	if !ok {
		return nil, evalerr.Fatalf("function `%s` not found", fn.FullName()).At(e.Callee.Range())
	}
	return o.callNative(ctx, sc, h, e)
}

// callUser runs a user function in a fresh scope whose parent is the global
// scope, so functions see globals and their parameters only.
func (o *Order) callUser(ctx context.Context, sc *scope.Scope, fn *ast.Function, e *ast.Call) (value.Value, error) {
	if len(e.Named) > 0 {
		return nil, evalerr.Unknown(e.Named[0].Name).At(e.Named[0].Span)
	}
	if len(e.Args) != len(fn.Params) {
		return nil, evalerr.Arity(len(fn.Params), len(e.Args)).At(e.Span)
	}

	inner := scope.WithParent(o.globals)
	for i, p := range fn.Params {
		v, err := o.eval(ctx, sc, e.Args[i])
		if err != nil {
			return nil, err
		}
		if err := inner.Declare(p.Name, v); err != nil {
			return nil, locate(err, p.Span)
		}
	}

	in, err := o.execStmts(ctx, inner, fn.Body.Stmts)
	if err != nil {
		return nil, err
	}
	switch in.kind {
	case interruptNone:
		return value.Null{}, nil
	case interruptReturn:
		return in.value, nil
	default:
		return nil, evalerr.Fatalf("AST invalid, `%s` inside of function found", in.kind).At(fn.Span)
	}
}

func (o *Order) callNative(ctx context.Context, sc *scope.Scope, h *registry.Handler, e *ast.Call) (value.Value, error) {
	call := registry.Call{Env: o, Span: e.Span}
	for _, arg := range e.Args {
		v, err := o.eval(ctx, sc, arg)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, registry.Arg{Value: v, Span: arg.Range()})
	}
	for _, named := range e.Named {
		v, err := o.eval(ctx, sc, named.Value)
		if err != nil {
			return nil, err
		}
		call.Named = append(call.Named, registry.NamedArg{Name: named.Name, Value: v, Span: named.Span})
	}
	return h.Invoke(ctx, call)
}

// spawn evaluates e.Expr in a new task and returns the channel that will
// receive its value. A failing task reports its error as the order's fault
// and sends null so receivers do not block forever.
func (o *Order) spawn(ctx context.Context, sc *scope.Scope, e *ast.Spawn) (value.Value, error) {
	id, err := o.channels.Create(1)
	if err != nil {
		return nil, evalerr.Wrap(err).At(e.Span)
	}
	ch, err := o.channel(id, e.Span)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Spawning task.", "channel", uint64(id), "span", e.Span.String())
	taskCtx := ctxlog.With(ctx, "task", uint64(id))
	o.tasks.Add(1)
	go func() {
		defer o.tasks.Done()
		v, err := o.eval(taskCtx, sc, e.Expr)
		if err != nil {
			o.fault(err)
			v = value.Null{}
		}
		if err := ch.Send(taskCtx, v); err != nil {
			ctxlog.FromContext(taskCtx).Debug("Task result dropped.", "error", err)
		}
	}()
	return id, nil
}
