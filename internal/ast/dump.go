package ast

import (
	"reflect"
)

// Tree converts a node into plain maps and slices that encode cleanly as JSON
// or YAML. Every struct gets a "node" key with its type name so interface
// fields (Expr, Stmt) stay distinguishable after encoding.
func Tree(n any) any {
	return tree(reflect.ValueOf(n))
}

func tree(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return tree(v.Elem())
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = tree(v.Index(i))
		}
		return out
	case reflect.Struct:
		t := v.Type()
		if t == reflect.TypeOf(Span{}) || t == reflect.TypeOf(Location{}) {
			return v.Interface()
		}
		out := map[string]any{"node": t.Name()}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Anonymous && f.Type == reflect.TypeOf(Span{}) {
				out["span"] = v.Field(i).Interface()
				continue
			}
			out[lowerFirst(f.Name)] = tree(v.Field(i))
		}
		return out
	default:
		return v.Interface()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
