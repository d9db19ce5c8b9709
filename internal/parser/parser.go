// Package parser builds an ast.Program from source text with a hand-written
// recursive descent parser over the lexer's token stream.
package parser

import (
	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int

	// loops counts the while bodies enclosing the current statement within
	// the current function body or par branch.
	loops int
}

// Parse parses a complete program.
func Parse(src string) (*ast.Program, error) {
	tokens, lexErrs := lexer.Tokenize(src)
	if len(lexErrs) > 0 {
		return nil, &Error{Msg: "invalid input", Span: lexErrs[0].Span, Lex: lexErrs}
	}
	p := &parser{tokens: tokens}
	prog, err := p.program()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseExpr parses a single expression, used for literal values supplied
// outside a program.
func ParseExpr(src string) (ast.Expr, error) {
	tokens, lexErrs := lexer.Tokenize(src)
	if len(lexErrs) > 0 {
		return nil, &Error{Msg: "invalid input", Span: lexErrs[0].Span, Lex: lexErrs}
	}
	p := &parser{tokens: tokens}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != lexer.EOF {
		return nil, unexpected(tok, lexer.EOF)
	}
	return expr, nil
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) lexer.Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) next() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

// want consumes the next token if it has the given kind.
func (p *parser) want(kind lexer.Kind) (lexer.Token, bool) {
	if p.peek().Kind == kind {
		return p.next(), true
	}
	return lexer.Token{}, false
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, unexpected(tok, kind)
	}
	return p.next(), nil
}

func (p *parser) program() (*ast.Program, error) {
	prog := &ast.Program{}
	start := p.peek().Span

	for {
		tok := p.peek()
		switch tok.Kind {
		case lexer.EOF:
			if prog.Actions == nil {
				return nil, &Error{Msg: "missing `actions` block", Span: tok.Span}
			}
			prog.Span = ast.Join(start, tok.Span)
			return prog, nil
		case lexer.Global:
			g, err := p.global()
			if err != nil {
				return nil, err
			}
			prog.Globals = append(prog.Globals, g)
		case lexer.Function:
			fn, err := p.function()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		case lexer.Actions:
			if prog.Actions != nil {
				return nil, &Error{Msg: "duplicate `actions` block", Span: tok.Span}
			}
			p.next()
			body, err := p.isolated(p.block)
			if err != nil {
				return nil, err
			}
			prog.Actions = body
		default:
			return nil, unexpected(tok, lexer.Global, lexer.Function, lexer.Actions)
		}
	}
}

func (p *parser) global() (*ast.Global, error) {
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
	return &ast.Global{Span: ast.Join(start, end.Span), Name: name.Text, Value: value}, nil
}

func (p *parser) function() (*ast.Function, error) {
	start := p.next().Span
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ParenOpen); err != nil {
		return nil, err
	}

	var params []*ast.Param
	seen := map[string]bool{}
	for p.peek().Kind != lexer.ParenClose {
		id, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		if seen[id.Text] {
			return nil, &Error{Msg: "duplicate parameter `" + id.Text + "`", Span: id.Span}
		}
		seen[id.Text] = true
		params = append(params, &ast.Param{Span: id.Span, Name: id.Text})
		if _, ok := p.want(lexer.Comma); !ok {
			break
		}
	}
	if _, err := p.expect(lexer.ParenClose); err != nil {
		return nil, err
	}

	body, err := p.isolated(p.block)
	if err != nil {
		return nil, err
	}
	return &ast.Function{Span: ast.Join(start, body.Span), Name: name.Text, Params: params, Body: body}, nil
}

// isolated parses a block that break and continue cannot escape: function
// bodies, the actions block and par branches.
func (p *parser) isolated(parse func() (*ast.Block, error)) (*ast.Block, error) {
	saved := p.loops
	p.loops = 0
	defer func() { p.loops = saved }()
	return parse()
}
