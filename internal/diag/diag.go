// Package diag renders order outcomes and errors for humans, including an
// excerpt of the offending source with carets under the error's span.
package diag

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/parser"
)

// Outcome classifies how an order ended.
type Outcome int

const (
	Finished Outcome = iota
	Done
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Finished:
		return "order finished"
	case Done:
		return "order done"
	case Cancelled:
		return "order cancelled"
	default:
		return "order failed"
	}
}

// Classify maps the error returned by a run to its outcome. The terminal
// order.done and order.cancel signals are not failures.
func Classify(err error) Outcome {
	if err == nil {
		return Finished
	}
	var evalErr *evalerr.Error
	if errors.As(err, &evalErr) {
		switch evalErr.Kind {
		case evalerr.OrderDone:
			return Done
		case evalerr.OrderCancel:
			return Cancelled
		}
	}
	return Failed
}

// Printer writes diagnostics for one source file.
type Printer struct {
	w      io.Writer
	file   string
	source string
}

func NewPrinter(w io.Writer, file, source string) *Printer {
	return &Printer{w: w, file: file, source: source}
}

// Outcome prints the outcome of err and returns it.
func (p *Printer) Outcome(err error) Outcome {
	outcome := Classify(err)
	switch outcome {
	case Finished, Done:
		fmt.Fprint(p.w, pterm.Success.Sprintln(outcome.String()))
	case Cancelled:
		fmt.Fprint(p.w, pterm.Warning.Sprintln(outcome.String()))
	default:
		p.Error(err)
	}
	return outcome
}

// Error prints err and, when it carries a span, the source excerpt.
func (p *Printer) Error(err error) {
	fmt.Fprint(p.w, pterm.Error.Sprintln(message(err)))
	span, ok := SpanOf(err)
	if !ok {
		return
	}
	if p.file != "" {
		fmt.Fprintf(p.w, "  --> %s:%d:%d\n", p.file, span.Start.Line, span.Start.Column)
	}
	fmt.Fprint(p.w, Excerpt(p.source, span))
}

// message renders err without the trailing position, which the excerpt
// already shows.
func message(err error) string {
	var evalErr *evalerr.Error
	if errors.As(err, &evalErr) && evalErr.Span != nil {
		plain := *evalErr
		plain.Span = nil
		return plain.Error()
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		if len(parseErr.Lex) > 0 {
			return parseErr.Lex[0].Error()
		}
		return parseErr.Msg
	}
	return err.Error()
}

// SpanOf extracts the source span of an evaluation or syntax error.
func SpanOf(err error) (ast.Span, bool) {
	var evalErr *evalerr.Error
	if errors.As(err, &evalErr) {
		if evalErr.Span == nil {
			return ast.Span{}, false
		}
		return *evalErr.Span, true
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		if len(parseErr.Lex) > 0 {
			return parseErr.Lex[0].Span, !parseErr.Lex[0].Span.IsZero()
		}
		return parseErr.Span, !parseErr.Span.IsZero()
	}
	return ast.Span{}, false
}

// Excerpt renders the first line of span with a line number gutter and a
// caret line underneath. Spans running past the line are underlined to its
// end.
func Excerpt(source string, span ast.Span) string {
	lines := strings.Split(source, "\n")
	if span.Start.Line < 1 || span.Start.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[span.Start.Line-1], "\r")

	start := clamp(span.Start.Column-1, 0, len(line))
	end := len(line)
	if span.End.Line == span.Start.Line {
		end = clamp(span.End.Column-1, start, len(line))
	}
	width := end - start
	if width < 1 {
		width = 1
	}

	number := fmt.Sprint(span.Start.Line)
	gutter := strings.Repeat(" ", len(number))
	// Tabs are kept so the carets line up under the same indentation.
	padding := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:start])

	var b strings.Builder
	fmt.Fprintf(&b, "%s |\n", gutter)
	fmt.Fprintf(&b, "%s | %s\n", number, line)
	fmt.Fprintf(&b, "%s | %s%s\n", gutter, padding, pterm.FgRed.Sprint(strings.Repeat("^", width)))
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
