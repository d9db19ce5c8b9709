// Package scope implements the chain of lexical binding frames. Each frame
// guards its own map; lookups walk towards the root holding at most one
// frame lock at a time.
package scope

import (
	"sync"

	"github.com/specialistvlad/wdlgo/internal/evalerr"
	"github.com/specialistvlad/wdlgo/internal/value"
)

// Scope is one frame of the chain. The zero value is not usable; create
// frames with New or WithParent.
type Scope struct {
	mu     sync.RWMutex
	vars   map[string]value.Value
	parent *Scope
}

// New returns a root frame.
func New() *Scope {
	return &Scope{vars: make(map[string]value.Value)}
}

// WithParent returns an empty frame chained to parent.
func WithParent(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]value.Value), parent: parent}
}

// Parent returns the enclosing frame, nil for a root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare binds id in this frame. Ancestors are not consulted, so shadowing
// an outer binding is allowed.
func (s *Scope) Declare(id string, v value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vars[id]; exists {
		return evalerr.AlreadyInUse(id)
	}
	s.vars[id] = value.Clone(v)
	return nil
}

// Assign overwrites the nearest binding of id.
func (s *Scope) Assign(id string, v value.Value) error {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.assignLocal(id, v) {
			return nil
		}
	}
	return evalerr.NotFound(id)
}

func (s *Scope) assignLocal(id string, v value.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vars[id]; !exists {
		return false
	}
	s.vars[id] = value.Clone(v)
	return true
}

// Get returns a copy of the nearest binding of id.
func (s *Scope) Get(id string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.getLocal(id); ok {
			return value.Clone(v), true
		}
	}
	return nil, false
}

func (s *Scope) getLocal(id string) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[id]
	return v, ok
}

// Names returns the identifiers declared directly in this frame.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	return names
}
