// Package regex provides the `regex` natives on top of Go's RE2 engine.
package regex

import (
	"context"
	"regexp"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/registry"
)

const Name = "regex"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	pair := []registry.Param{
		{Name: "regex", Kind: registry.KindString},
		{Name: "haystack", Kind: registry.KindString},
	}
	r.Register(Name, "match", &registry.Handler{Params: pair, Fn: match})
	r.Register(Name, "find", &registry.Handler{Params: pair, Fn: find})
	r.Register(Name, "replace", &registry.Handler{
		Params: append(append([]registry.Param(nil), pair...), registry.Param{Name: "replace", Kind: registry.KindString}),
		Fn:     replace,
	})
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, evalerr.Fatalf("invalid regex pattern `%s`", pattern)
	}
	return re, nil
}

func match(_ context.Context, args registry.Args) (any, error) {
	re, err := compile(args.String(0))
	if err != nil {
		return nil, err
	}
	return re.MatchString(args.String(1)), nil
}

func find(_ context.Context, args registry.Args) (any, error) {
	re, err := compile(args.String(0))
	if err != nil {
		return nil, err
	}
	return re.FindAllString(args.String(1), -1), nil
}

func replace(_ context.Context, args registry.Args) (any, error) {
	re, err := compile(args.String(0))
	if err != nil {
		return nil, err
	}
	return re.ReplaceAllString(args.String(1), args.String(2)), nil
}
