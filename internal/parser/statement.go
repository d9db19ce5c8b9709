package parser

import (
	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/lexer"
)

func (p *parser) block() (*ast.Block, error) {
	start, err := p.expect(lexer.CurlyOpen)
	if err != nil {
		return nil, err
	}
	blk := &ast.Block{}
	for p.peek().Kind != lexer.CurlyClose {
		if p.peek().Kind == lexer.EOF {
			return nil, unexpected(p.peek(), lexer.CurlyClose)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	end := p.next()
	blk.Span = ast.Join(start.Span, end.Span)
	return blk, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.CurlyOpen:
		return p.block()
	case lexer.Let:
		return p.let()
	case lexer.If:
		return p.ifStmt()
	case lexer.While:
		return p.while()
	case lexer.Par:
		return p.par()
	case lexer.Break, lexer.Continue:
		return p.loopControl()
	case lexer.Return:
		return p.returnStmt()
	default:
		return p.simple()
	}
}

func (p *parser) let() (ast.Stmt, error) {
	start := p.next().Span
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Equal); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(lexer.Semicolon)
	if err != nil {
		return nil, err
	}
	return &ast.Let{Span: ast.Join(start, end.Span), Name: name.Text, Value: value}, nil
}

func (p *parser) ifStmt() (*ast.If, error) {
	start := p.next().Span
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Span: ast.Join(start, then.Span), Cond: cond, Then: then}

	if _, ok := p.want(lexer.Else); !ok {
		return stmt, nil
	}
	switch p.peek().Kind {
	case lexer.If:
		elseIf, err := p.ifStmt()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseIf
		stmt.Span = ast.Join(start, elseIf.Span)
	case lexer.CurlyOpen:
		elseBlock, err := p.block()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
		stmt.Span = ast.Join(start, elseBlock.Span)
	default:
		return nil, unexpected(p.peek(), lexer.If, lexer.CurlyOpen)
	}
	return stmt, nil
}

func (p *parser) while() (ast.Stmt, error) {
	start := p.next().Span
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.loops++
	body, err := p.block()
	p.loops--
	if err != nil {
		return nil, err
	}
	return &ast.While{Span: ast.Join(start, body.Span), Cond: cond, Body: body}, nil
}

func (p *parser) par() (ast.Stmt, error) {
	start := p.next().Span
	if _, err := p.expect(lexer.CurlyOpen); err != nil {
		return nil, err
	}
	stmt := &ast.Par{}
	for p.peek().Kind == lexer.CurlyOpen {
		branch, err := p.isolated(p.block)
		if err != nil {
			return nil, err
		}
		stmt.Blocks = append(stmt.Blocks, branch)
	}
	end, err := p.expect(lexer.CurlyClose)
	if err != nil {
		return nil, err
	}
	stmt.Span = ast.Join(start, end.Span)
	return stmt, nil
}

func (p *parser) loopControl() (ast.Stmt, error) {
	tok := p.next()
	if p.loops == 0 {
		return nil, &Error{Msg: "`" + tok.Text + "` is only allowed inside a loop", Span: tok.Span}
	}
	end, err := p.expect(lexer.Semicolon)
	if err != nil {
		return nil, err
	}
	span := ast.Join(tok.Span, end.Span)
	if tok.Kind == lexer.Break {
		return &ast.Break{Span: span}, nil
	}
	return &ast.Continue{Span: span}, nil
}

func (p *parser) returnStmt() (ast.Stmt, error) {
	start := p.next().Span
	stmt := &ast.Return{}
	if p.peek().Kind != lexer.Semicolon {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	end, err := p.expect(lexer.Semicolon)
	if err != nil {
		return nil, err
	}
	stmt.Span = ast.Join(start, end.Span)
	return stmt, nil
}

// simple parses expression statements, assignments and sends.
func (p *parser) simple() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	var stmt ast.Stmt
	switch p.peek().Kind {
	case lexer.Equal:
		eq := p.next()
		id, ok := expr.(*ast.Identifier)
		if !ok {
			return nil, &Error{Msg: "invalid assignment target", Span: expr.Range()}
		}
		if len(id.Scope) > 0 {
			return nil, &Error{Msg: "cannot assign to module scoped identifier `" + id.FullName() + "`", Span: eq.Span}
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt = &ast.Assign{Span: ast.Join(id.Span, value.Range()), Name: id.Name, Value: value}
	case lexer.ArrowLeft:
		p.next()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt = &ast.Send{Span: ast.Join(expr.Range(), value.Range()), Channel: expr, Value: value}
	default:
		stmt = &ast.ExprStmt{Span: expr.Range(), X: expr}
	}

	end, err := p.expect(lexer.Semicolon)
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *ast.Assign:
		s.Span.End = end.End
	case *ast.Send:
		s.Span.End = end.End
	case *ast.ExprStmt:
		s.Span.End = end.End
	}
	return stmt, nil
}
