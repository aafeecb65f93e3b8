package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used by tests and by the
// memory driver for throwaway sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Get returns a copy of the stored document.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

// SetMany replaces all given documents at once.
func (m *MemoryStore) SetMany(ctx context.Context, docs map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for key := range docs {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, doc := range docs {
		m.docs[key] = append([]byte(nil), doc...)
	}
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
