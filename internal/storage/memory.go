// Package storage provides key-value slot store implementations.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.SlotStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory slot store. Safe for concurrent access.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
	log   *logger.Logger
	// failSet, when set, is returned from every Set call.
	failSet error
}

// NewMemoryStore creates an empty in-memory slot store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		slots: make(map[string][]byte),
		log:   log,
	}
}

// Get returns a copy of the payload stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.slots[key]
	if !ok {
		s.log.Debug("slot not found: %s", key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), p...), nil
}

// Set stores payload under key. Overwrites if it already exists.
func (s *MemoryStore) Set(ctx context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSet != nil {
		return s.failSet
	}
	s.log.Debug("writing slot %s (%d bytes)", key, len(payload))
	s.slots[key] = append([]byte(nil), payload...)
	return nil
}

// FailWrites makes subsequent Set calls return err. Pass nil to recover.
// Used to exercise the persistence-warning path.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = err
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
