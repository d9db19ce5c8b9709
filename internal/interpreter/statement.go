package interpreter

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/channel"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/scope"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// execBlock runs b in a fresh child of sc.
func (o *Order) execBlock(ctx context.Context, sc *scope.Scope, b *ast.Block) (interrupt, error) {
	return o.execStmts(ctx, scope.WithParent(sc), b.Stmts)
}

// execStmts runs stmts in sc, stopping at the first interrupt.
func (o *Order) execStmts(ctx context.Context, sc *scope.Scope, stmts []ast.Stmt) (interrupt, error) {
	for _, s := range stmts {
		in, err := o.exec(ctx, sc, s)
		if err != nil {
			return proceed, err
		}
		if in.kind != interruptNone {
			return in, nil
		}
	}
	return proceed, nil
}

func (o *Order) exec(ctx context.Context, sc *scope.Scope, s ast.Stmt) (interrupt, error) {
	if err := ctx.Err(); err != nil {
		return proceed, err
	}

	switch s := s.(type) {
	case *ast.Block:
		return o.execBlock(ctx, sc, s)

	case *ast.Let:
		v, err := o.eval(ctx, sc, s.Value)
		if err != nil {
			return proceed, err
		}
		return proceed, locate(sc.Declare(s.Name, v), s.Span)

	case *ast.Assign:
		v, err := o.eval(ctx, sc, s.Value)
		if err != nil {
			return proceed, err
		}
		return proceed, locate(sc.Assign(s.Name, v), s.Span)

	case *ast.ExprStmt:
		_, err := o.eval(ctx, sc, s.X)
		return proceed, err

	case *ast.If:
		return o.execIf(ctx, sc, s)

	case *ast.While:
		return o.execWhile(ctx, sc, s)

	case *ast.Break:
		return interrupt{kind: interruptBreak}, nil

	case *ast.Continue:
		return interrupt{kind: interruptContinue}, nil

	case *ast.Return:
		var v value.Value = value.Null{}
		if s.Value != nil {
			var err error
			if v, err = o.eval(ctx, sc, s.Value); err != nil {
				return proceed, err
			}
		}
		return interrupt{kind: interruptReturn, value: v}, nil

	case *ast.Send:
		return proceed, o.execSend(ctx, sc, s)

	case *ast.Par:
		return o.execPar(ctx, sc, s)

	default:
		return proceed, evalerr.Fatalf("unknown statement %T", s).At(s.Range())
	}
}

func (o *Order) execIf(ctx context.Context, sc *scope.Scope, s *ast.If) (interrupt, error) {
	cond, err := o.eval(ctx, sc, s.Cond)
	if err != nil {
		return proceed, err
	}
	if value.Boolify(cond) {
		return o.execBlock(ctx, sc, s.Then)
	}
	if s.Else == nil {
		return proceed, nil
	}
	return o.exec(ctx, sc, s.Else)
}

func (o *Order) execWhile(ctx context.Context, sc *scope.Scope, s *ast.While) (interrupt, error) {
	for {
		if err := ctx.Err(); err != nil {
			return proceed, err
		}
		cond, err := o.eval(ctx, sc, s.Cond)
		if err != nil {
			return proceed, err
		}
		if !value.Boolify(cond) {
			return proceed, nil
		}

		in, err := o.execBlock(ctx, sc, s.Body)
		if err != nil {
			return proceed, err
		}
		switch in.kind {
		case interruptBreak:
			return proceed, nil
		case interruptReturn:
			return in, nil
		}
	}
}

func (o *Order) execSend(ctx context.Context, sc *scope.Scope, s *ast.Send) error {
	target, err := o.eval(ctx, sc, s.Channel)
	if err != nil {
		return err
	}
	id, ok := target.(value.Channel)
	if !ok {
		return evalerr.InvalidTypef("`%s` <- `any`", value.TypeName(target)).At(s.Channel.Range())
	}
	ch, err := o.channel(id, s.Channel.Range())
	if err != nil {
		return err
	}

	v, err := o.eval(ctx, sc, s.Value)
	if err != nil {
		return err
	}
	if err := ch.Send(ctx, v); err != nil {
		if errors.Is(err, channel.ErrClosed) {
			return evalerr.Fatalf("%v", err).At(s.Span)
		}
		return err
	}
	return nil
}

// execPar runs every branch concurrently in its own child scope and waits
// for all of them. The first error in branch order wins.
func (o *Order) execPar(ctx context.Context, sc *scope.Scope, s *ast.Par) (interrupt, error) {
	errs := make([]error, len(s.Blocks))
	var wg sync.WaitGroup
	for i, b := range s.Blocks {
		wg.Add(1)
		go func(i int, b *ast.Block) {
			defer wg.Done()
			in, err := o.execBlock(ctx, sc, b)
			if err == nil && in.kind != interruptNone && in.kind != interruptBreak {
				err = evalerr.Fatalf("AST invalid, `%s` inside of par block found", in.kind).At(b.Span)
			}
			errs[i] = err
		}(i, b)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return proceed, err
		}
	}
	return proceed, nil
}
