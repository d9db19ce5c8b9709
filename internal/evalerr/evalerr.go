// Package evalerr defines the error type produced while evaluating a
// program. Errors carry a Kind for programmatic checks and, where one is
// meaningful, the span of the source that caused them.
package evalerr

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/wdlgo/internal/ast"
)

// Kind classifies an evaluation error.
type Kind int

const (
	Fatal Kind = iota
	VariableAlreadyInUse
	VariableNotFound
	InvalidType
	DivisionByZero
	ArityMismatch
	MissingArgument
	UnknownArgument
	TooFewArguments
	OrderDone
	OrderCancel
)

func (k Kind) String() string {
	switch k {
	case Fatal:
		return "fatal"
	case VariableAlreadyInUse:
		return "variable already in use"
	case VariableNotFound:
		return "variable not found"
	case InvalidType:
		return "invalid type"
	case DivisionByZero:
		return "division by zero"
	case ArityMismatch:
		return "arity mismatch"
	case MissingArgument:
		return "missing argument"
	case UnknownArgument:
		return "unknown argument"
	case TooFewArguments:
		return "too few arguments"
	case OrderDone:
		return "order done"
	case OrderCancel:
		return "order cancel"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is an evaluation error. Only the fields relevant to Kind are set:
// ID for the variable and argument kinds, Msg for Fatal and InvalidType,
// Expected and Given for ArityMismatch.
type Error struct {
	Kind     Kind
	ID       string
	Msg      string
	Expected int
	Given    int
	Span     *ast.Span
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case Fatal:
		msg = e.Msg
	case VariableAlreadyInUse:
		msg = fmt.Sprintf("variable `%s` already in use", e.ID)
	case VariableNotFound:
		msg = fmt.Sprintf("variable `%s` not found", e.ID)
	case InvalidType:
		msg = "invalid types, " + e.Msg
	case DivisionByZero:
		msg = "division by zero"
	case ArityMismatch:
		msg = fmt.Sprintf("invalid count of function call parameter, expected `%d`, given `%d`", e.Expected, e.Given)
	case MissingArgument:
		msg = fmt.Sprintf("argument `%s` missing", e.ID)
	case UnknownArgument:
		msg = fmt.Sprintf("named argument `%s` unknown", e.ID)
	case TooFewArguments:
		msg = "too few arguments"
	case OrderDone:
		msg = "order done"
	case OrderCancel:
		msg = "order canceled"
	}
	if e.Span != nil {
		return fmt.Sprintf("%s (at %s)", msg, e.Span)
	}
	return msg
}

// At attaches span to the error unless it already has one, and returns the
// error for chaining.
func (e *Error) At(span ast.Span) *Error {
	if e.Span == nil {
		s := span
		e.Span = &s
	}
	return e
}

// IsTerminal reports whether the error is an order.done or order.cancel
// signal rather than a failure.
func (e *Error) IsTerminal() bool {
	return e.Kind == OrderDone || e.Kind == OrderCancel
}

func Fatalf(format string, args ...any) *Error {
	return &Error{Kind: Fatal, Msg: fmt.Sprintf(format, args...)}
}

func InvalidTypef(format string, args ...any) *Error {
	return &Error{Kind: InvalidType, Msg: fmt.Sprintf(format, args...)}
}

func AlreadyInUse(id string) *Error {
	return &Error{Kind: VariableAlreadyInUse, ID: id}
}

func NotFound(id string) *Error {
	return &Error{Kind: VariableNotFound, ID: id}
}

func Arity(expected, given int) *Error {
	return &Error{Kind: ArityMismatch, Expected: expected, Given: given}
}

func Missing(id string) *Error {
	return &Error{Kind: MissingArgument, ID: id}
}

func Unknown(id string) *Error {
	return &Error{Kind: UnknownArgument, ID: id}
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap converts any error into an *Error, keeping existing ones intact and
// turning foreign errors into Fatal.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Fatal, Msg: err.Error()}
}

// KindOf returns the kind of err, or Fatal for foreign errors. A nil error
// reports Kind(-1), which matches no kind.
func KindOf(err error) Kind {
	if err == nil {
		return Kind(-1)
	}
	return Wrap(err).Kind
}
