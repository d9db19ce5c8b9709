package interpreter

import (
	"context"
	"math"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/channel"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/scope"
	"github.com/specialistvlad/wdlgo/internal/value"
)

func (o *Order) eval(ctx context.Context, sc *scope.Scope, e ast.Expr) (value.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return literal(e)

	case *ast.Array:
		arr := make(value.Array, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := o.eval(ctx, sc, el)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case *ast.Object:
		// Entries are evaluated in source order; a repeated key keeps the
		// last value.
		obj := make(value.Object, len(e.Entries))
		for _, entry := range e.Entries {
			v, err := o.eval(ctx, sc, entry.Value)
			if err != nil {
				return nil, err
			}
			obj[entry.Key] = v
		}
		return obj, nil

	case *ast.Binary:
		return o.evalBinary(ctx, sc, e)

	case *ast.Logic:
		left, err := o.eval(ctx, sc, e.Left)
		if err != nil {
			return nil, err
		}
		l := value.Boolify(left)
		if e.Op == ast.OpAnd && !l {
			return value.Bool(false), nil
		}
		if e.Op == ast.OpOr && l {
			return value.Bool(true), nil
		}
		right, err := o.eval(ctx, sc, e.Right)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.Boolify(right)), nil

	case *ast.Unary:
		return o.evalUnary(ctx, sc, e)

	case *ast.Group:
		return o.eval(ctx, sc, e.Inner)

	case *ast.Identifier:
		return o.resolve(sc, e)

	case *ast.Member:
		return o.evalMember(ctx, sc, e)

	case *ast.Offset:
		return o.evalOffset(ctx, sc, e)

	case *ast.Call:
		return o.evalCall(ctx, sc, e)

	case *ast.Spawn:
		return o.spawn(ctx, sc, e)

	default:
		return nil, evalerr.Fatalf("unknown expression %T", e).At(e.Range())
	}
}

func literal(e *ast.Literal) (value.Value, error) {
	switch v := e.Value.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(v), nil
	case float64:
		return value.Number(v), nil
	case string:
		return value.String(v), nil
	default:
		return nil, evalerr.Fatalf("AST invalid, literal of type %T", v).At(e.Span)
	}
}

func (o *Order) evalBinary(ctx context.Context, sc *scope.Scope, e *ast.Binary) (value.Value, error) {
	left, err := o.eval(ctx, sc, e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == ast.OpCoalesce {
		if _, null := left.(value.Null); !null {
			return left, nil
		}
	}
	right, err := o.eval(ctx, sc, e.Right)
	if err != nil {
		return nil, err
	}

	v, err := binary(e.Op, left, right)
	if err != nil {
		return nil, locate(err, e.Span)
	}
	return v, nil
}

func (o *Order) evalUnary(ctx context.Context, sc *scope.Scope, e *ast.Unary) (value.Value, error) {
	operand, err := o.eval(ctx, sc, e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpNegate:
		n, ok := operand.(value.Number)
		if !ok {
			return nil, evalerr.InvalidTypef("-`%s`", value.TypeName(operand)).At(e.Span)
		}
		return -n, nil
	case ast.OpFlip:
		return value.Bool(!value.Boolify(operand)), nil
	case ast.OpReceive:
		id, ok := operand.(value.Channel)
		if !ok {
			return nil, evalerr.InvalidTypef("<-`%s`", value.TypeName(operand)).At(e.Span)
		}
		ch, err := o.channel(id, e.Operand.Range())
		if err != nil {
			return nil, err
		}
		v, ok, err := ch.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, evalerr.Fatalf("cannot receive on closed channel").At(e.Span)
		}
		return v, nil
	default:
		return nil, evalerr.Fatalf("unknown unary operator %q", e.Op).At(e.Span)
	}
}

func (o *Order) evalMember(ctx context.Context, sc *scope.Scope, e *ast.Member) (value.Value, error) {
	if fn, ok := o.nativeMember(sc, e); ok {
		return fn, nil
	}

	target, err := o.eval(ctx, sc, e.Object)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(value.Object)
	if !ok {
		return nil, evalerr.InvalidTypef("`%s`.%s", value.TypeName(target), e.Name).At(e.Span)
	}
	if v, ok := obj[e.Name]; ok {
		return v, nil
	}
	return value.Null{}, nil
}

func (o *Order) evalOffset(ctx context.Context, sc *scope.Scope, e *ast.Offset) (value.Value, error) {
	target, err := o.eval(ctx, sc, e.Target)
	if err != nil {
		return nil, err
	}
	index, err := o.eval(ctx, sc, e.Index)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case value.Array:
		if n, ok := index.(value.Number); ok {
			if i, ok := position(n, len(t)); ok {
				return t[i], nil
			}
			return value.Null{}, nil
		}
	case value.Object:
		if key, ok := index.(value.String); ok {
			if v, ok := t[string(key)]; ok {
				return v, nil
			}
			return value.Null{}, nil
		}
	case value.String:
		if n, ok := index.(value.Number); ok {
			runes := []rune(string(t))
			if i, ok := position(n, len(runes)); ok {
				return value.String(runes[i]), nil
			}
			return value.Null{}, nil
		}
	}
	return nil, evalerr.InvalidTypef("`%s`[`%s`]", value.TypeName(target), value.TypeName(index)).At(e.Span)
}

// position truncates n towards zero and reports whether it indexes a
// sequence of length size.
func position(n value.Number, size int) (int, bool) {
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < 0 || f >= float64(size) {
		return 0, false
	}
	return int(f), true
}

func (o *Order) channel(id value.Channel, span ast.Span) (*channel.Channel, error) {
	ch, ok := o.channels.Get(id)
	if !ok {
		return nil, evalerr.Fatalf("channel `%d` not found", uint64(id)).At(span)
	}
	return ch, nil
}

// binary applies every operator except `??`, whose short circuit is handled
// by the caller.
func binary(op ast.BinaryOp, left, right value.Value) (value.Value, error) {
	switch op {
	case ast.OpAdd:
		return add(left, right)
	case ast.OpEqual:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNotEqual:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpCoalesce:
		return right, nil
	}

	l, lok := left.(value.Number)
	r, rok := right.(value.Number)
	if !lok || !rok {
		return nil, evalerr.InvalidTypef("`%s` %s `%s`", value.TypeName(left), op, value.TypeName(right))
	}

	switch op {
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, evalerr.New(evalerr.DivisionByZero)
		}
		return l / r, nil
	case ast.OpMod:
		if r == 0 {
			return nil, evalerr.New(evalerr.DivisionByZero)
		}
		return value.Number(math.Mod(float64(l), float64(r))), nil
	case ast.OpLess:
		return value.Bool(l < r), nil
	case ast.OpLessEqual:
		return value.Bool(l <= r), nil
	case ast.OpGreater:
		return value.Bool(l > r), nil
	case ast.OpGreaterEqual:
		return value.Bool(l >= r), nil
	default:
		return nil, evalerr.Fatalf("unknown binary operator %q", op)
	}
}

func add(left, right value.Value) (value.Value, error) {
	switch l := left.(type) {
	case value.Number:
		if r, ok := right.(value.Number); ok {
			return l + r, nil
		}
	case value.String:
		var b strings.Builder
		b.WriteString(string(l))
		b.WriteString(right.String())
		return value.String(b.String()), nil
	case value.Array:
		out := make(value.Array, len(l), len(l)+1)
		copy(out, l)
		if r, ok := right.(value.Array); ok {
			return append(out, r...), nil
		}
		return append(out, right), nil
	}
	return nil, evalerr.InvalidTypef("`%s` + `%s`", value.TypeName(left), value.TypeName(right))
}
