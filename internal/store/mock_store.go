// ABOUTME: Mock KVStore implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject write failures

package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory KVStore implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	entries  map[string]*Entry // keyed by key
	writeErr error
	writes   int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		entries: make(map[string]*Entry),
	}
}

// FailWrites makes every subsequent write return err. Pass nil to clear.
func (m *MockStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes returns the number of successful writes so far.
func (m *MockStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// GetValue retrieves an entry by key.
func (m *MockStore) GetValue(ctx context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *e
	result.Value = append([]byte(nil), e.Value...)
	return &result, nil
}

// PutValue stores value under key, bumping its revision.
func (m *MockStore) PutValue(ctx context.Context, key string, value []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.put(key, value), nil
}

// PutValueIfRevision stores value only when the current revision matches.
func (m *MockStore) PutValueIfRevision(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return 0, m.writeErr
	}

	var current int64
	if e, ok := m.entries[key]; ok {
		current = e.Revision
	}
	if current != expected {
		return 0, ErrStaleRevision
	}
	return m.put(key, value), nil
}

// DeleteValue removes key.
func (m *MockStore) DeleteValue(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.entries, key)
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// put must be called with mu held.
func (m *MockStore) put(key string, value []byte) int64 {
	var revision int64 = 1
	if e, ok := m.entries[key]; ok {
		revision = e.Revision + 1
	}
	m.entries[key] = &Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		Revision:  revision,
		UpdatedAt: time.Now().UTC(),
	}
	m.writes++
	return revision
}

// Ensure MockStore implements KVStore
var _ KVStore = (*MockStore)(nil)
