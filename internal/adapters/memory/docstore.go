package memory

import (
	"context"
	"sync"
)

// DocStore is an in-memory keyed document store.
type DocStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

// NewDocStore creates an empty in-memory document store.
func NewDocStore() *DocStore {
	return &DocStore{docs: make(map[string]string)}
}

// SetBatch stores documents under their ids.
func (s *DocStore) SetBatch(ctx context.Context, docs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range docs {
		s.docs[id] = doc
	}
	return nil
}

// Get returns a stored document.
func (s *DocStore) Get(ctx context.Context, id string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok, nil
}
