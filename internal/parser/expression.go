package parser

import (
	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/lexer"
)

var (
	comparisonOps = map[lexer.Kind]ast.BinaryOp{
		lexer.EqualEqual:   ast.OpEqual,
		lexer.BangEqual:    ast.OpNotEqual,
		lexer.Less:         ast.OpLess,
		lexer.LessEqual:    ast.OpLessEqual,
		lexer.Greater:      ast.OpGreater,
		lexer.GreaterEqual: ast.OpGreaterEqual,
	}
	additiveOps = map[lexer.Kind]ast.BinaryOp{
		lexer.Plus:  ast.OpAdd,
		lexer.Minus: ast.OpSub,
	}
	multiplicativeOps = map[lexer.Kind]ast.BinaryOp{
		lexer.Star:    ast.OpMul,
		lexer.Slash:   ast.OpDiv,
		lexer.Percent: ast.OpMod,
	}
	unaryOps = map[lexer.Kind]ast.UnaryOp{
		lexer.Minus:     ast.OpNegate,
		lexer.Bang:      ast.OpFlip,
		lexer.ArrowLeft: ast.OpReceive,
	}
)

// expression is the entry point of the precedence chain. A leading `spawn`
// applies to the whole expression that follows it.
func (p *parser) expression() (ast.Expr, error) {
	if p.peek().Kind == lexer.Spawn {
		return p.atomic()
	}
	return p.or()
}

func (p *parser) or() (ast.Expr, error) {
	return p.logic(lexer.Or, ast.OpOr, p.and)
}

func (p *parser) and() (ast.Expr, error) {
	return p.logic(lexer.And, ast.OpAnd, p.comparison)
}

func (p *parser) logic(kind lexer.Kind, op ast.LogicOp, operand func() (ast.Expr, error)) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.want(kind); !ok {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.Logic{Span: ast.Join(left.Range(), right.Range()), Op: op, Left: left, Right: right}
	}
}

func (p *parser) comparison() (ast.Expr, error) {
	return p.binary(comparisonOps, p.additive)
}

func (p *parser) additive() (ast.Expr, error) {
	return p.binary(additiveOps, p.multiplicative)
}

func (p *parser) multiplicative() (ast.Expr, error) {
	return p.binary(multiplicativeOps, p.unary)
}

func (p *parser) binary(ops map[lexer.Kind]ast.BinaryOp, operand func() (ast.Expr, error)) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Span: ast.Join(left.Range(), right.Range()), Op: op, Left: left, Right: right}
	}
}

func (p *parser) unary() (ast.Expr, error) {
	op, ok := unaryOps[p.peek().Kind]
	if !ok {
		return p.coalesce()
	}
	tok := p.next()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Span: ast.Join(tok.Span, operand.Range()), Op: op, Operand: operand}, nil
}

func (p *parser) coalesce() (ast.Expr, error) {
	left, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.want(lexer.QuestionQuestion); !ok {
			return left, nil
		}
		right, err := p.postfix()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Span: ast.Join(left.Range(), right.Range()), Op: ast.OpCoalesce, Left: left, Right: right}
	}
}

// postfix parses member access, offsets and calls chained onto an atom.
func (p *parser) postfix() (ast.Expr, error) {
	expr, err := p.atomic()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			p.next()
			name, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			expr = &ast.Member{Span: ast.Join(expr.Range(), name.Span), Object: expr, Name: name.Text}
		case lexer.BracketOpen:
			p.next()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(lexer.BracketClose)
			if err != nil {
				return nil, err
			}
			expr = &ast.Offset{Span: ast.Join(expr.Range(), end.Span), Target: expr, Index: index}
		case lexer.ParenOpen:
			call, err := p.call(expr)
			if err != nil {
				return nil, err
			}
			expr = call
		default:
			return expr, nil
		}
	}
}

func (p *parser) call(callee ast.Expr) (ast.Expr, error) {
	p.next()
	call := &ast.Call{Callee: callee}
	for p.peek().Kind != lexer.ParenClose {
		if p.peek().Kind == lexer.Ident && p.peekAt(1).Kind == lexer.Colon {
			name := p.next()
			p.next()
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			call.Named = append(call.Named, &ast.NamedArg{Span: ast.Join(name.Span, value.Range()), Name: name.Text, Value: value})
		} else {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			if len(call.Named) > 0 {
				return nil, &Error{Msg: "positional argument after named argument", Span: value.Range()}
			}
			call.Args = append(call.Args, value)
		}
		if _, ok := p.want(lexer.Comma); !ok {
			break
		}
	}
	end, err := p.expect(lexer.ParenClose)
	if err != nil {
		return nil, err
	}
	call.Span = ast.Join(callee.Range(), end.Span)
	return call, nil
}

func (p *parser) atomic() (ast.Expr, error) {
	tok := p.next()
	switch tok.Kind {
	case lexer.Null:
		return &ast.Literal{Span: tok.Span}, nil
	case lexer.True:
		return &ast.Literal{Span: tok.Span, Value: true}, nil
	case lexer.False:
		return &ast.Literal{Span: tok.Span, Value: false}, nil
	case lexer.Number, lexer.String:
		return &ast.Literal{Span: tok.Span, Value: tok.Value}, nil
	case lexer.Ident:
		return p.identifier(tok)
	case lexer.ParenOpen:
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(lexer.ParenClose)
		if err != nil {
			return nil, err
		}
		return &ast.Group{Span: ast.Join(tok.Span, end.Span), Inner: inner}, nil
	case lexer.BracketOpen:
		arr := &ast.Array{}
		for p.peek().Kind != lexer.BracketClose {
			elem, err := p.expression()
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, elem)
			if _, ok := p.want(lexer.Comma); !ok {
				break
			}
		}
		end, err := p.expect(lexer.BracketClose)
		if err != nil {
			return nil, err
		}
		arr.Span = ast.Join(tok.Span, end.Span)
		return arr, nil
	case lexer.CurlyOpen:
		return p.object(tok)
	case lexer.Spawn:
		expr, err := p.or()
		if err != nil {
			return nil, err
		}
		return &ast.Spawn{Span: ast.Join(tok.Span, expr.Range()), Expr: expr}, nil
	default:
		return nil, unexpected(tok)
	}
}

func (p *parser) identifier(first lexer.Token) (ast.Expr, error) {
	id := &ast.Identifier{Span: first.Span, Name: first.Text}
	for {
		if _, ok := p.want(lexer.ColonColon); !ok {
			return id, nil
		}
		next, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		id.Scope = append(id.Scope, id.Name)
		id.Name = next.Text
		id.Span = ast.Join(id.Span, next.Span)
	}
}

func (p *parser) object(open lexer.Token) (ast.Expr, error) {
	obj := &ast.Object{}
	for p.peek().Kind != lexer.CurlyClose {
		key := p.next()
		var name string
		switch key.Kind {
		case lexer.Ident:
			name = key.Text
		case lexer.String:
			name = key.Value.(string)
		default:
			return nil, unexpected(key, lexer.Ident, lexer.String)
		}
		if _, err := p.expect(lexer.Colon); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, &ast.ObjectEntry{Span: ast.Join(key.Span, value.Range()), Key: name, Value: value})
		if _, ok := p.want(lexer.Comma); !ok {
			break
		}
	}
	end, err := p.expect(lexer.CurlyClose)
	if err != nil {
		return nil, err
	}
	obj.Span = ast.Join(open.Span, end.Span)
	return obj, nil
}
