// Package env_vars provides the `env` natives for reading the process
// environment.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/specialistvlad/wdlgo/internal/registry"
	"github.com/specialistvlad/wdlgo/internal/value"
)

const Name = "env"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Get returns the named variable, or null when it is not set.
func Get(_ context.Context, args registry.Args) (any, error) {
	v, ok := os.LookupEnv(args.String(0))
	if !ok {
		return value.Null{}, nil
	}
	return v, nil
}

// All returns every environment variable as an object.
func All(_ context.Context, _ registry.Args) (any, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Name, "get", &registry.Handler{
		Params: []registry.Param{{Name: "name", Kind: registry.KindString}},
		Fn:     Get,
	})
	r.Register(Name, "all", &registry.Handler{Fn: All})
}
