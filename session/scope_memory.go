package session

import (
	"context"
	"sync"
)

var _ Scope = (*MemoryScope)(nil)

// MemoryScope keeps values for the lifetime of the process
type MemoryScope struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryScope creates an empty in-memory scope
func NewMemoryScope() *MemoryScope {
	return &MemoryScope{
		values: make(map[string]string),
	}
}

// Load returns the subset of keys that are present
func (m *MemoryScope) Load(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			found[k] = v
		}
	}
	return found, nil
}

// Store sets all values under a single lock
func (m *MemoryScope) Store(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Remove deletes keys; missing keys are ignored
func (m *MemoryScope) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
