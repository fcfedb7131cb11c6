// Package memory provides an in-memory storage.Registry. It backs the
// "memory" storage driver and doubles as the fake used by service and
// handler tests.
package memory

import (
	"context"
	"sync"

	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"
)

// Memory keeps records in a map and remembers first-insertion order in a
// separate slice so Values is stable across calls.
type Memory struct {
	mu      sync.RWMutex
	records map[string]types.Participant
	order   []string
}

// New returns an empty in-memory registry.
func New() *Memory {
	return &Memory{records: make(map[string]types.Participant)}
}

// Get returns the record stored under account, or storage.ErrNotFound.
func (m *Memory) Get(_ context.Context, account string) (types.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.records[account]; ok {
		return p, nil
	}
	return types.Participant{}, storage.ErrNotFound
}

// Values returns a copy of every record in first-registration order.
func (m *Memory) Values(_ context.Context) ([]types.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Participant, 0, len(m.order))
	for _, account := range m.order {
		out = append(out, m.records[account])
	}
	return out, nil
}

// Upsert stores p under account, replacing any previous record. A new
// account is appended to the iteration order; an existing one keeps its place.
func (m *Memory) Upsert(_ context.Context, account string, p types.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[account]; !ok {
		m.order = append(m.order, account)
	}
	m.records[account] = p
	return nil
}

// Close satisfies io.Closer so the backend factory can treat every driver
// the same way.
func (m *Memory) Close() error { return nil }
