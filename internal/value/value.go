// Package value implements the dynamically typed runtime values of the
// language together with their truthiness, equality and display rules.
package value

import (
	"sort"
	"strconv"
	"strings"
)

// Type names a value's dynamic type.
type Type string

const (
	NullType     Type = "null"
	BoolType     Type = "bool"
	NumberType   Type = "number"
	StringType   Type = "string"
	ArrayType    Type = "array"
	ObjectType   Type = "object"
	FunctionType Type = "function"
	ChannelType  Type = "channel"
)

// Value is one of Null, Bool, Number, String, Array, Object, *Function or
// Channel.
type Value interface {
	Type() Type
	String() string
}

type (
	Null   struct{}
	Bool   bool
	Number float64
	String string
	Array  []Value
	Object map[string]Value
)

// Function references a user function (empty Module) or a native handler
// by module and name. It is resolved again on every call.
type Function struct {
	Module string
	Name   string
}

// Channel is a handle into the channel registry.
type Channel uint64

func (Null) Type() Type      { return NullType }
func (Bool) Type() Type      { return BoolType }
func (Number) Type() Type    { return NumberType }
func (String) Type() Type    { return StringType }
func (Array) Type() Type     { return ArrayType }
func (Object) Type() Type    { return ObjectType }
func (*Function) Type() Type { return FunctionType }
func (Channel) Type() Type   { return ChannelType }

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'f', -1, 64) }

func (s String) String() string { return string(s) }

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = nested(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o Object) String() string {
	keys := o.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Quote(k) + ": " + nested(o[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (*Function) String() string { return "<function>" }

func (Channel) String() string { return "<channel>" }

// nested renders strings quoted so container output stays unambiguous.
func nested(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

// Keys returns the object's keys in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FullName renders the function as written in source, e.g. `log::info`.
func (f *Function) FullName() string {
	if f.Module == "" {
		return f.Name
	}
	return f.Module + "::" + f.Name
}

// Boolify reports the truthiness of v: null, the empty string and zero are
// false, everything else is true.
func Boolify(v Value) bool {
	switch x := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(x)
	case Number:
		return x != 0
	case String:
		return x != ""
	default:
		return true
	}
}

// TypeName returns the type of v for error messages; a nil Value is null.
func TypeName(v Value) Type {
	if v == nil {
		return NullType
	}
	return v.Type()
}

// Equal compares structurally. Functions are never equal, not even to
// themselves.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool, Number, String, Channel:
		return a == b
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone deep-copies arrays and objects so a stored value is never aliased.
func Clone(v Value) Value {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Array:
		out := make(Array, len(x))
		for i, e := range x {
			out[i] = Clone(e)
		}
		return out
	case Object:
		out := make(Object, len(x))
		for k, e := range x {
			out[k] = Clone(e)
		}
		return out
	case *Function:
		fn := *x
		return &fn
	default:
		return v
	}
}
