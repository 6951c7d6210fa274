package core

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It is the storage fake used throughout the test suite and the
// "memory" provider for throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	store  map[string]string
	logger Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store:  make(map[string]string),
		logger: &NoOpLogger{},
	}
}

// SetLogger configures the logger for this memory store
func (m *MemoryStore) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Get retrieves a value; a missing key yields an empty string.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.store[key]
	m.logger.Debug("Store lookup", map[string]interface{}{
		"operation": "store_get",
		"key":       key,
		"hit":       exists,
	})
	return value, nil
}

// Set stores a value under key, replacing any prior value.
func (m *MemoryStore) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug("Store write", map[string]interface{}{
		"operation":  "store_set",
		"key":        key,
		"value_size": len(value),
	})
	m.store[key] = value
	return nil
}

// Delete removes a value from the store
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.store[key]
	delete(m.store, key)

	m.logger.Debug("Store delete", map[string]interface{}{
		"operation": "store_delete",
		"key":       key,
		"existed":   existed,
	})
	return nil
}
