package memory

import (
	"context"
	"sync"

	"github.com/calvora/conveyor/pkg/domain"
)

// Store is an in-memory AccountStore for local runs and tests. A single lock
// serializes units of work, which makes Update trivially all-or-nothing.
type Store struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

// NewStore creates an empty in-memory account store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
	}
}

// Get loads one account.
func (s *Store) Get(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, &domain.AccountNotFoundError{AccountID: id}
	}
	copy := acc
	return &copy, nil
}

// Save persists one account unconditionally.
func (s *Store) Save(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

// Update applies fn to copies of the named accounts and commits all of them
// only when fn succeeds.
func (s *Store) Update(ctx context.Context, ids []string, fn func(accounts map[string]*domain.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := make(map[string]*domain.Account, len(ids))
	for _, id := range ids {
		acc, ok := s.accounts[id]
		if !ok {
			return &domain.AccountNotFoundError{AccountID: id}
		}
		copy := acc
		working[id] = &copy
	}

	if err := fn(working); err != nil {
		return err
	}

	for id, acc := range working {
		s.accounts[id] = *acc
	}
	return nil
}
