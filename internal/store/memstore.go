package store

import (
	"context"
	"sync"

	"github.com/crimson-sun/sawmill/internal/model"
)

// MemStore is an in-memory Store for serve mode without persistence and
// for tests. Safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]model.BuildRecord
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]model.BuildRecord)}
}

// Put stores or replaces the record under its build id.
func (s *MemStore) Put(_ context.Context, rec model.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.BuildID] = rec
	return nil
}

// Get returns the record for the build id, or ErrNotFound.
func (s *MemStore) Get(_ context.Context, buildID string) (model.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[buildID]
	if !ok {
		return model.BuildRecord{}, ErrNotFound
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
