package lexer

import (
	"fmt"

	"github.com/specialistvlad/wdlgo/internal/ast"
)

// Kind identifies the type of a token.
type Kind int

const (
	EOF Kind = iota

	// literals
	Null
	True
	False
	Number
	String
	Ident

	// keywords
	Global
	Actions
	Function
	Let
	And
	Or
	If
	Else
	While
	Continue
	Break
	Return
	Spawn
	Par

	// symbols
	Plus
	Minus
	Star
	Slash
	Percent
	Question
	QuestionQuestion
	Dot
	Colon
	ColonColon
	Bang
	Comma
	Semicolon
	Equal
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	ArrowLeft

	// brackets
	ParenOpen
	ParenClose
	BracketOpen
	BracketClose
	CurlyOpen
	CurlyClose
)

var kindNames = map[Kind]string{
	EOF:              "<eof>",
	Null:             "null",
	True:             "true",
	False:            "false",
	Number:           "<number>",
	String:           "<string>",
	Ident:            "<identifier>",
	Global:           "global",
	Actions:          "actions",
	Function:         "function",
	Let:              "let",
	And:              "and",
	Or:               "or",
	If:               "if",
	Else:             "else",
	While:            "while",
	Continue:         "continue",
	Break:            "break",
	Return:           "return",
	Spawn:            "spawn",
	Par:              "par",
	Plus:             "+",
	Minus:            "-",
	Star:             "*",
	Slash:            "/",
	Percent:          "%",
	Question:         "?",
	QuestionQuestion: "??",
	Dot:              ".",
	Colon:            ":",
	ColonColon:       "::",
	Bang:             "!",
	Comma:            ",",
	Semicolon:        ";",
	Equal:            "=",
	EqualEqual:       "==",
	BangEqual:        "!=",
	Less:             "<",
	LessEqual:        "<=",
	Greater:          ">",
	GreaterEqual:     ">=",
	ArrowLeft:        "<-",
	ParenOpen:        "(",
	ParenClose:       ")",
	BracketOpen:      "[",
	BracketClose:     "]",
	CurlyOpen:        "{",
	CurlyClose:       "}",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"null":     Null,
	"true":     True,
	"false":    False,
	"global":   Global,
	"actions":  Actions,
	"function": Function,
	"let":      Let,
	"and":      And,
	"or":       Or,
	"if":       If,
	"else":     Else,
	"while":    While,
	"continue": Continue,
	"break":    Break,
	"return":   Return,
	"spawn":    Spawn,
	"par":      Par,
}

// symbols lists every operator and bracket in the order they are added to
// the scanner.
var symbols = []Kind{
	QuestionQuestion, ColonColon, EqualEqual, BangEqual, LessEqual, GreaterEqual, ArrowLeft,
	Plus, Minus, Star, Slash, Percent, Question, Dot, Colon, Bang, Comma, Semicolon,
	Equal, Less, Greater,
	ParenOpen, ParenClose, BracketOpen, BracketClose, CurlyOpen, CurlyClose,
}

// Token is a single lexical unit. Value holds the decoded float64 for
// numbers and the unescaped text for strings.
type Token struct {
	ast.Span
	Kind  Kind
	Text  string
	Value any
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return t.Text
}
