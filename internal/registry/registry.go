package registry

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface that all native modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the native functions of a single application instance,
// keyed by module and name.
type Registry struct {
	handlers map[string]*Handler
	modules  map[string]int
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		handlers: make(map[string]*Handler),
		modules:  make(map[string]int),
	}
}

// RegisterModules lets every module add its functions.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Register adds a native function. Registering the same module and name
// twice is a programming error and panics.
func (r *Registry) Register(module, name string, h *Handler) {
	key := qualified(module, name)
	if _, exists := r.handlers[key]; exists {
		panic(fmt.Sprintf("native function with name '%s' already registered", key))
	}
	if h.Fn == nil {
		panic(fmt.Sprintf("native function '%s' has no implementation", key))
	}
	slog.Debug("Registering native function.", "module", module, "name", name, "params", len(h.Params))
	h.Module = module
	h.Name = name
	r.handlers[key] = h
	r.modules[module]++
}

// Resolve looks up a native function.
func (r *Registry) Resolve(module, name string) (*Handler, bool) {
	h, ok := r.handlers[qualified(module, name)]
	return h, ok
}

// HasModule reports whether at least one function is registered under
// module.
func (r *Registry) HasModule(module string) bool {
	return r.modules[module] > 0
}

// Modules returns the registered module names in sorted order.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns every registered function as "module.name", sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for key := range r.handlers {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

func qualified(module, name string) string {
	return module + "." + name
}
