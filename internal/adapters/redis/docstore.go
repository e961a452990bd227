package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DocStore implements ports.DocStore on Redis plain keys.
type DocStore struct {
	client *backend.Client
	prefix string
}

// NewDocStore creates a document store from an existing client.
func NewDocStore(client *backend.Client, opts ...func(*DocStore)) *DocStore {
	store := &DocStore{
		client: client,
		prefix: "doc:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// WithDocPrefix sets the key prefix for documents.
func WithDocPrefix(prefix string) func(*DocStore) {
	return func(s *DocStore) {
		s.prefix = prefix
	}
}

// SetBatch stores documents under their ids in one pipeline round trip.
func (s *DocStore) SetBatch(ctx context.Context, docs map[string]string) error {
	if len(docs) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for id, doc := range docs {
		pipe.Set(ctx, s.prefix+id, doc, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}
	return nil
}

// Get returns a stored document.
func (s *DocStore) Get(ctx context.Context, id string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get document: %w", err)
	}
	return val, true, nil
}
