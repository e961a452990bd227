package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/ports"
	"github.com/shopspring/decimal"
)

// lockTriggerAmount simulates a locked destination account: deposits of
// exactly this amount fail with AccountLockedError. It exists to exercise
// non-retryable failure propagation end to end.
var lockTriggerAmount = decimal.NewFromInt(10)

// Service performs the ledger operations the account activities invoke.
// Every operation runs inside the store's all-or-nothing unit of work.
type Service struct {
	store  ports.AccountStore
	logger *slog.Logger
}

// NewService creates a ledger service.
func NewService(store ports.AccountStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

// GetAccount loads one account.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.store.Get(ctx, id)
}

// CreateAccount persists a new account with an opening balance.
func (s *Service) CreateAccount(ctx context.Context, id string, balance decimal.Decimal) (*domain.Account, error) {
	if balance.Sign() < 0 {
		return nil, fmt.Errorf("ledger: opening balance must not be negative, got %s", balance)
	}
	acc := domain.NewAccount(id, balance)
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}
	s.logger.Info("created account", "account_id", id, "balance", balance.String())
	return acc, nil
}

// Withdraw debits amount from the account. Fails with InsufficientFundsError
// before any mutation when the balance does not cover it.
func (s *Service) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	return s.store.Update(ctx, []string{accountID}, func(accounts map[string]*domain.Account) error {
		acc := accounts[accountID]
		if err := acc.Withdraw(amount); err != nil {
			return err
		}
		s.logger.Info("withdrew from account",
			"account_id", accountID, "amount", amount.String(), "balance", acc.Balance.String())
		return nil
	})
}

// Deposit credits amount to the account. The lock trigger amount fails with
// AccountLockedError.
func (s *Service) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	return s.store.Update(ctx, []string{accountID}, func(accounts map[string]*domain.Account) error {
		acc := accounts[accountID]
		if err := s.deposit(acc, amount); err != nil {
			return err
		}
		s.logger.Info("deposited to account",
			"account_id", accountID, "amount", amount.String(), "balance", acc.Balance.String())
		return nil
	})
}

// Transfer moves amount between the accounts inside one unit of work: any
// failure rolls back both the debit and the credit.
func (s *Service) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	return s.store.Update(ctx, []string{fromID, toID}, func(accounts map[string]*domain.Account) error {
		from, to := accounts[fromID], accounts[toID]
		if err := from.Withdraw(amount); err != nil {
			return err
		}
		if err := s.deposit(to, amount); err != nil {
			return err
		}
		s.logger.Info("transferred between accounts",
			"from", fromID, "to", toID, "amount", amount.String())
		return nil
	})
}

func (s *Service) deposit(acc *domain.Account, amount decimal.Decimal) error {
	if amount.Equal(lockTriggerAmount) {
		return &domain.AccountLockedError{AccountID: acc.ID}
	}
	return acc.Deposit(amount)
}

func validAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("ledger: amount must be positive, got %s", amount)
	}
	return nil
}
