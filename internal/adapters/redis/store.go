package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calvora/conveyor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries when a watched key changes
// between read and commit.
const maxTxRetries = 10

// Store implements ports.AccountStore on Redis. Update uses WATCH/MULTI so a
// multi-account unit of work commits atomically or not at all, safe under
// concurrent writers.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix for accounts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates an account store from an existing client.
func NewStore(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "account:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Get loads one account.
func (s *Store) Get(ctx context.Context, id string) (*domain.Account, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, &domain.AccountNotFoundError{AccountID: id}
		}
		return nil, fmt.Errorf("failed to get account from redis: %w", err)
	}
	return decodeAccount(id, val)
}

// Save persists one account unconditionally.
func (s *Store) Save(ctx context.Context, account *domain.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := s.client.Set(ctx, s.key(account.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save account to redis: %w", err)
	}
	return nil
}

// Update applies fn to the named accounts under WATCH and commits all writes
// in one MULTI/EXEC. A concurrent writer on any watched key aborts the
// transaction and the unit of work is retried from a fresh read.
func (s *Store) Update(ctx context.Context, ids []string, fn func(accounts map[string]*domain.Account) error) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	txn := func(tx *backend.Tx) error {
		working := make(map[string]*domain.Account, len(ids))
		for _, id := range ids {
			val, err := tx.Get(ctx, s.key(id)).Result()
			if err != nil {
				if errors.Is(err, backend.Nil) {
					return &domain.AccountNotFoundError{AccountID: id}
				}
				return fmt.Errorf("failed to get account from redis: %w", err)
			}
			acc, err := decodeAccount(id, val)
			if err != nil {
				return err
			}
			working[id] = acc
		}

		if err := fn(working); err != nil {
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			for id, acc := range working {
				data, err := json.Marshal(acc)
				if err != nil {
					return fmt.Errorf("failed to marshal account: %w", err)
				}
				pipe.Set(ctx, s.key(id), data, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txn, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("account update aborted after %d optimistic-lock retries", maxTxRetries)
}

func decodeAccount(id, val string) (*domain.Account, error) {
	var acc domain.Account
	if err := json.Unmarshal([]byte(val), &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", id, err)
	}
	return &acc, nil
}
