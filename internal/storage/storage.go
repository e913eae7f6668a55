// ABOUTME: Durable client-local key-value storage with file, SQLite, and memory backends
// ABOUTME: Open selects the backend by name; every backend is safe for concurrent use

package storage

import (
	"fmt"
	"sync"
)

// Store is a string key-value store local to the client.
// Single Get and Set calls are atomic; a Get followed by a Set is not.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Close releases backend resources.
	Close() error
}

// Open returns the store for backend ("file", "sqlite", or "memory") at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(path)
	case "sqlite":
		return OpenSQLite(path)
	case "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemStore is an in-process Store. Contents are lost on exit.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

// Get implements Store.
func (m *MemStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close implements Store.
func (m *MemStore) Close() error { return nil }
