package ast

import "fmt"

// Location is a 1-based line and column inside a source file.
type Location struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Span is the source range covered by a node or token. End points one column
// past the last character.
type Span struct {
	Start Location `json:"start" yaml:"start"`
	End   Location `json:"end" yaml:"end"`
}

// Range returns the span itself. Embedding Span in a node makes the node
// satisfy Node through this method.
func (s Span) Range() Span {
	return s
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Join returns the span starting at a and ending at b.
func Join(a, b Span) Span {
	return Span{Start: a.Start, End: b.End}
}
