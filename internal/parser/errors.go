package parser

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/lexer"
)

// Error is a syntax error. Lexer failures are reported through the same type
// with Lex set.
type Error struct {
	Msg  string
	Span ast.Span
	Lex  []*lexer.Error
}

func (e *Error) Error() string {
	if len(e.Lex) > 0 {
		msgs := make([]string, len(e.Lex))
		for i, le := range e.Lex {
			msgs[i] = fmt.Sprintf("%s at %s", le.Error(), le.Span)
		}
		return strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("%s at %s", e.Msg, e.Span)
}

func unexpected(tok lexer.Token, expected ...lexer.Kind) *Error {
	if tok.Kind == lexer.EOF {
		return &Error{Msg: "unexpected end of file" + expecting(expected), Span: tok.Span}
	}
	return &Error{Msg: fmt.Sprintf("unexpected token `%s`", tok.Text) + expecting(expected), Span: tok.Span}
}

func expecting(kinds []lexer.Kind) string {
	if len(kinds) == 0 {
		return ""
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = "`" + k.String() + "`"
	}
	return ", expected " + strings.Join(names, " or ")
}
