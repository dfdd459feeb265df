// Package idempotency suppresses duplicate irreversible actions.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Store is a concurrency-safe set of action keys with atomic check-and-set.
type Store interface {
	// Reserve records key and reports true if it was not present before.
	// Concurrent callers with the same key see exactly one true.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release forgets key so the action may be attempted again.
	Release(ctx context.Context, key string) error
}

// EmailKey derives the key for an email from its recipient and subject.
func EmailKey(to, subject string) string {
	sum := sha256.Sum256([]byte(to + "-" + subject))
	return hex.EncodeToString(sum[:])
}

// MemoryStore lives for the process lifetime only.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]struct{})}
}

func (m *MemoryStore) Reserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
