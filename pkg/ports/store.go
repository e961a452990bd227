package ports

import (
	"context"

	"github.com/calvora/conveyor/pkg/domain"
)

// AccountStore persists ledger accounts.
//
// Update runs fn against fresh copies of the named accounts and commits every
// mutation atomically: either all accounts are written or none are. An error
// from fn aborts the unit of work with nothing persisted.
type AccountStore interface {
	// Get loads one account. Returns domain.AccountNotFoundError when absent.
	Get(ctx context.Context, id string) (*domain.Account, error)

	// Save persists one account unconditionally.
	Save(ctx context.Context, account *domain.Account) error

	// Update applies fn to the named accounts inside one all-or-nothing unit
	// of work. The map passed to fn holds a copy per requested id.
	Update(ctx context.Context, ids []string, fn func(accounts map[string]*domain.Account) error) error
}

// DocStore is the keyed document storage the ingestion pipeline writes into.
type DocStore interface {
	// SetBatch stores documents under their ids.
	SetBatch(ctx context.Context, docs map[string]string) error

	// Get returns a stored document, or "" with ok=false when absent.
	Get(ctx context.Context, id string) (string, bool, error)
}
