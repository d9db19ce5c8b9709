package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// Arg is an evaluated call argument.
type Arg struct {
	Value value.Value
	Span  ast.Span
}

// NamedArg is an evaluated `name: value` call argument.
type NamedArg struct {
	Name  string
	Value value.Value
	Span  ast.Span
}

// Call is a fully evaluated native call site.
type Call struct {
	Env   Env
	Span  ast.Span
	Args  []Arg
	Named []NamedArg
}

// Invoke binds the call's arguments, runs the native and converts its
// result. Errors without a span are attributed to the call site.
func (h *Handler) Invoke(ctx context.Context, call Call) (value.Value, error) {
	logger := ctxlog.FromContext(ctx)
	args, err := h.Bind(call)
	if err != nil {
		return nil, err
	}

	logger.Debug("Invoking native function.", "function", h.FullName())
	out, err := h.Fn(ctx, args)
	if err != nil {
		return nil, evalerr.Wrap(err).At(call.Span)
	}

	v, err := FromNative(out)
	if err != nil {
		return nil, evalerr.Fatalf("native `%s` returned an unsupported value: %v", h.FullName(), err).At(call.Span)
	}
	return v, nil
}

// Bind matches the call's arguments to the parameter slots. Positional
// arguments fill slots in declaration order; the remaining slots are looked
// up by name among the named arguments.
func (h *Handler) Bind(call Call) (Args, error) {
	slots := make(map[string]bool, len(h.Params))
	for _, p := range h.Params {
		if p.Kind.consumes() {
			slots[p.Name] = true
		}
	}
	if len(call.Args) > len(slots) {
		return nil, evalerr.Arity(len(slots), len(call.Args)).At(call.Span)
	}

	// Named arguments are checked before any slot is filled, so a misspelt
	// name is reported as unknown rather than as the slot it failed to fill.
	named := make(map[string]NamedArg, len(call.Named))
	for _, n := range call.Named {
		if _, dup := named[n.Name]; dup {
			return nil, evalerr.Fatalf("argument `%s` given more than once", n.Name).At(n.Span)
		}
		if !slots[n.Name] {
			return nil, evalerr.Unknown(n.Name).At(n.Span)
		}
		named[n.Name] = n
	}

	args := make(Args, len(h.Params))
	next := 0
	position := 0
	for i, p := range h.Params {
		switch p.Kind {
		case KindEnv:
			args[i] = call.Env
			continue
		case KindSpan:
			args[i] = call.Span
			continue
		}
		position++

		var (
			arg   Arg
			found bool
		)
		if next < len(call.Args) {
			arg, found = call.Args[next], true
			next++
			if n, dup := named[p.Name]; dup {
				return nil, evalerr.Fatalf("argument `%s` given by position and by name", p.Name).At(n.Span)
			}
		} else if n, ok := named[p.Name]; ok {
			arg, found = Arg{Value: n.Value, Span: n.Span}, true
			delete(named, p.Name)
		}

		if !found || (p.Optional && isNull(arg.Value)) {
			if !p.Optional {
				if len(call.Named) == 0 {
					return nil, evalerr.New(evalerr.TooFewArguments).At(call.Span)
				}
				return nil, evalerr.Missing(p.Name).At(call.Span)
			}
			continue
		}

		bound, err := coerce(p, arg.Value, position)
		if err != nil {
			return nil, evalerr.Wrap(err).At(arg.Span)
		}
		args[i] = bound
	}

	return args, nil
}

func isNull(v value.Value) bool {
	_, null := v.(value.Null)
	return v == nil || null
}

func coerce(p Param, v value.Value, position int) (any, error) {
	if v == nil {
		v = value.Null{}
	}
	var ok bool
	switch p.Kind {
	case KindAny:
		return v, nil
	case KindBool:
		_, ok = v.(value.Bool)
	case KindNumber:
		_, ok = v.(value.Number)
	case KindString:
		_, ok = v.(value.String)
	case KindArray:
		_, ok = v.(value.Array)
	case KindObject:
		_, ok = v.(value.Object)
	case KindChannel:
		_, ok = v.(value.Channel)
	case KindFunction:
		_, ok = v.(*value.Function)
	case KindStruct:
		if _, isObj := v.(value.Object); !isObj {
			break
		}
		target := reflect.New(p.Target)
		if err := DecodeValue(v, target.Interface()); err != nil {
			return nil, evalerr.InvalidTypef("%v for argument %d", err, position)
		}
		return target.Interface(), nil
	default:
		return nil, evalerr.Fatalf("parameter `%s` has unsupported kind %d", p.Name, int(p.Kind))
	}
	if !ok {
		return nil, evalerr.InvalidTypef("expected `%s`, given `%s` for argument %d", p.Kind, value.TypeName(v), position)
	}
	return v, nil
}

// Validate checks every handler's parameter list: names must be unique,
// struct slots need a struct Target that go-cty can describe, and env or
// span slots cannot be optional.
func (r *Registry) Validate() error {
	var errs []string
	for _, key := range r.Names() {
		h := r.handlers[key]
		seen := make(map[string]bool)
		for _, p := range h.Params {
			switch p.Kind {
			case KindEnv, KindSpan:
				if p.Optional {
					errs = append(errs, fmt.Sprintf("%s: %s parameter '%s' cannot be optional", key, p.Kind, p.Name))
				}
				continue
			case KindStruct:
				if err := checkTarget(p.Target); err != nil {
					errs = append(errs, fmt.Sprintf("%s: parameter '%s': %v", key, p.Name, err))
				}
			}
			if p.Name == "" {
				errs = append(errs, fmt.Sprintf("%s: parameter without a name", key))
			}
			if seen[p.Name] {
				errs = append(errs, fmt.Sprintf("%s: duplicate parameter '%s'", key, p.Name))
			}
			seen[p.Name] = true
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
