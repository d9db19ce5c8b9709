// Package lexer turns source text into tokens. The scanner DFA is generated
// once by lexmachine and shared by every call to Tokenize.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// ErrorKind classifies a lexing failure.
type ErrorKind int

const (
	InvalidCharacter ErrorKind = iota
	UnterminatedString
	InvalidEscape
	InvalidNumber
)

// Error is a lexing failure with the offending source range.
type Error struct {
	Kind ErrorKind
	Text string
	Span ast.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnterminatedString:
		return "unterminated string literal"
	case InvalidEscape:
		return fmt.Sprintf("invalid character escape `%s`", e.Text)
	case InvalidNumber:
		return fmt.Sprintf("invalid number `%s`", e.Text)
	default:
		return fmt.Sprintf("invalid character `%s`", e.Text)
	}
}

var (
	buildOnce sync.Once
	scanner   *lexmachine.Lexer
	buildErr  error
)

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind Kind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(kind), string(m.Bytes), m), nil
	}
}

// literal escapes every byte so the symbol is matched verbatim.
func literal(sym string) []byte {
	return []byte(`\` + strings.Join(strings.Split(sym, ""), `\`))
}

func build() (*lexmachine.Lexer, error) {
	buildOnce.Do(func() {
		lx := lexmachine.NewLexer()
		lx.Add([]byte(`//[^\n]*\n?`), skip)
		lx.Add([]byte(`/\*([^*]|\*+[^*/])*\*+/`), skip)
		lx.Add([]byte(`( |\t|\n|\r)+`), skip)
		lx.Add([]byte(`"([^"\\\n]|\\.)*"`), makeToken(String))
		lx.Add([]byte(`[0-9]+(\.[0-9]+)?`), makeToken(Number))
		lx.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken(Ident))
		for _, sym := range symbols {
			lx.Add(literal(sym.String()), makeToken(sym))
		}
		buildErr = lx.Compile()
		scanner = lx
	})
	return scanner, buildErr
}

// Tokenize scans src completely. It returns every lexing error found rather
// than stopping at the first one; the token slice always ends with EOF when
// no errors were reported.
func Tokenize(src string) ([]Token, []*Error) {
	lx, err := build()
	if err != nil {
		return nil, []*Error{{Kind: InvalidCharacter, Text: err.Error()}}
	}

	s, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, []*Error{{Kind: InvalidCharacter, Text: err.Error()}}
	}

	var tokens []Token
	var errs []*Error
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			errs = append(errs, unconsumed(src, ui))
			s.TC = ui.FailTC
			if s.TC <= ui.StartTC {
				s.TC = ui.StartTC + 1
			}
			continue
		} else if err != nil {
			errs = append(errs, &Error{Kind: InvalidCharacter, Text: err.Error()})
			break
		}

		t, lexErr := convert(tok.(*lexmachine.Token))
		if lexErr != nil {
			errs = append(errs, lexErr)
			continue
		}
		tokens = append(tokens, t)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	end := endOf(src)
	tokens = append(tokens, Token{
		Kind: EOF,
		Span: ast.Span{Start: end, End: ast.Location{Line: end.Line, Column: end.Column + 1}},
	})
	return tokens, nil
}

func convert(lt *lexmachine.Token) (Token, *Error) {
	text := string(lt.Lexeme)
	t := Token{
		Kind: Kind(lt.Type),
		Text: text,
		Span: ast.Span{
			Start: ast.Location{Line: lt.StartLine, Column: lt.StartColumn},
			End:   ast.Location{Line: lt.EndLine, Column: lt.EndColumn + 1},
		},
	}

	switch t.Kind {
	case Ident:
		if kw, ok := keywords[text]; ok {
			t.Kind = kw
		}
	case Number:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return t, &Error{Kind: InvalidNumber, Text: text, Span: t.Span}
		}
		t.Value = n
	case String:
		str, bad, ok := unescape(text[1 : len(text)-1])
		if !ok {
			return t, &Error{Kind: InvalidEscape, Text: bad, Span: t.Span}
		}
		t.Value = str
	}
	return t, nil
}

func unescape(s string) (string, string, bool) {
	if !strings.Contains(s, `\`) {
		return s, "", true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", `\` + string(s[i]), false
		}
	}
	return b.String(), "", true
}

func unconsumed(src string, ui *machines.UnconsumedInput) *Error {
	start := ast.Location{Line: ui.StartLine, Column: ui.StartColumn}
	e := &Error{
		Kind: InvalidCharacter,
		Span: ast.Span{Start: start, End: ast.Location{Line: start.Line, Column: start.Column + 1}},
	}
	if ui.StartTC < len(src) {
		e.Text = string(src[ui.StartTC])
		if src[ui.StartTC] == '"' {
			e.Kind = UnterminatedString
			e.Span.End = ast.Location{Line: ui.FailLine, Column: ui.FailColumn + 1}
		}
	}
	return e
}

func endOf(src string) ast.Location {
	line := 1 + strings.Count(src, "\n")
	col := len(src) - strings.LastIndex(src, "\n")
	return ast.Location{Line: line, Column: col}
}
