package channel

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/wdlgo/internal/value"
)

// Registry owns every channel of a running order, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	next     value.Channel
	channels map[value.Channel]*Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[value.Channel]*Channel)}
}

// Create allocates a channel with the given capacity, which must be at
// least one.
func (r *Registry) Create(capacity int) (value.Channel, error) {
	if capacity < 1 {
		return 0, fmt.Errorf("the buffer size for a channel must be at least `1`, but `%d` given", capacity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.channels[id] = New(capacity)
	return id, nil
}

// Get resolves a channel handle.
func (r *Registry) Get(id value.Channel) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Len returns the number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
