package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/wdlgo/internal/registry"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It registers `sleeper.sleep(id)` and records when each call ran.
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register("sleeper", "sleep", &registry.Handler{
		Params: []registry.Param{{Name: "id", Kind: registry.KindString}},
		Fn: func(ctx context.Context, args registry.Args) (any, error) {
			id := args.String(0)

			startTime := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			endTime := time.Now()

			m.mu.Lock()
			m.ExecutionTimes[id] = &ExecutionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()

			if m.completionChan != nil {
				m.completionChan <- id
			}
			return id, nil
		},
	})
}

// Record returns the execution record of id, nil when it never ran.
func (m *MockSleeperModule) Record(id string) *ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecutionTimes[id]
}
