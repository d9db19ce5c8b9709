package registry

import (
	"context"
	"io"
	"reflect"

	"github.com/specialistvlad/wdlgo/internal/ast"
	"github.com/specialistvlad/wdlgo/internal/channel"
	"github.com/specialistvlad/wdlgo/internal/orderlog"
	"github.com/specialistvlad/wdlgo/internal/router"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// Kind is the shape a parameter slot accepts.
type Kind int

const (
	// KindAny accepts every value unchanged.
	KindAny Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindChannel
	KindFunction
	// KindStruct decodes an object into a fresh instance of Param.Target.
	KindStruct
	// KindEnv is filled with the running order's Env and consumes no
	// argument.
	KindEnv
	// KindSpan is filled with the call site's span and consumes no
	// argument.
	KindSpan
)

var kindNames = map[Kind]string{
	KindAny:      "any",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindArray:    "array",
	KindObject:   "object",
	KindChannel:  "channel",
	KindFunction: "function",
	KindStruct:   "object",
	KindEnv:      "env",
	KindSpan:     "span",
}

func (k Kind) String() string {
	return kindNames[k]
}

// consumes reports whether the slot takes an argument from the call.
func (k Kind) consumes() bool {
	return k != KindEnv && k != KindSpan
}

// Param is one slot of a native function's parameter list.
type Param struct {
	Name     string
	Kind     Kind
	Optional bool
	// Target is the struct type decoded for KindStruct slots. Fields are
	// matched by their `cty` tags.
	Target reflect.Type
}

// Env is the part of a running order that natives may use.
type Env interface {
	Channels() *channel.Registry
	Router() router.Client
	Stdout() io.Writer
	Log(ctx context.Context, e orderlog.Entry)
}

// Func implements a native. args holds one entry per declared Param.
type Func func(ctx context.Context, args Args) (any, error)

// Handler is a registered native function.
type Handler struct {
	Module string
	Name   string
	Params []Param
	Fn     Func
}

// FullName renders the handler as written in source, e.g. `log::info`.
func (h *Handler) FullName() string {
	return h.Module + "::" + h.Name
}

// Args are the bound arguments of a call, indexed like Handler.Params. An
// absent optional argument is nil and its accessor returns the zero value.
type Args []any

// Has reports whether slot i was supplied.
func (a Args) Has(i int) bool {
	return i < len(a) && a[i] != nil
}

func (a Args) Value(i int) value.Value {
	v, _ := a.at(i).(value.Value)
	return v
}

func (a Args) Bool(i int) bool {
	v, _ := a.at(i).(value.Bool)
	return bool(v)
}

func (a Args) Number(i int) float64 {
	v, _ := a.at(i).(value.Number)
	return float64(v)
}

func (a Args) String(i int) string {
	v, _ := a.at(i).(value.String)
	return string(v)
}

func (a Args) Array(i int) value.Array {
	v, _ := a.at(i).(value.Array)
	return v
}

func (a Args) Object(i int) value.Object {
	v, _ := a.at(i).(value.Object)
	return v
}

func (a Args) Channel(i int) value.Channel {
	v, _ := a.at(i).(value.Channel)
	return v
}

func (a Args) Function(i int) *value.Function {
	v, _ := a.at(i).(*value.Function)
	return v
}

func (a Args) Env(i int) Env {
	v, _ := a.at(i).(Env)
	return v
}

func (a Args) Span(i int) ast.Span {
	v, _ := a.at(i).(ast.Span)
	return v
}

func (a Args) at(i int) any {
	if i >= len(a) {
		return nil
	}
	return a[i]
}

// Decoded returns the struct decoded for a KindStruct slot, nil when the
// optional argument was absent.
func Decoded[T any](a Args, i int) *T {
	v, _ := a.at(i).(*T)
	return v
}
