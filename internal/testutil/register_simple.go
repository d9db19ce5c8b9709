package testutil

import "github.com/specialistvlad/wdlgo/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single native function.
type SimpleModule struct {
	Module  string
	Name    string
	Handler *registry.Handler
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Name != "" && m.Handler != nil {
		r.Register(m.Module, m.Name, m.Handler)
	}
}
