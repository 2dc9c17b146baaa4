package storage

import (
	"context"
	"sync"
)

// Memory is an in-memory ObjectStore for tests and local runs. It is
// safe for concurrent use. The zero value behaves like a bucket whose
// object has never been written.
type Memory struct {
	mu     sync.RWMutex
	data   []byte
	exists bool

	// FetchErr and StoreErr, when set, are returned by the matching
	// operation instead of touching the object. Used to simulate
	// transient store failures.
	FetchErr error
	StoreErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Fetch implements ObjectStore.
func (m *Memory) Fetch(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if !m.exists {
		return nil, ErrNotFound
	}

	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Store implements ObjectStore.
func (m *Memory) Store(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreErr != nil {
		return m.StoreErr
	}

	m.data = make([]byte, len(data))
	copy(m.data, data)
	m.exists = true
	return nil
}

// Ensure Memory implements ObjectStore.
var _ ObjectStore = (*Memory)(nil)
