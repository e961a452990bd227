package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conveyor/internal/adapters/memory"
	"github.com/calvora/conveyor/internal/ledger"
	"github.com/calvora/conveyor/pkg/domain"
)

func newTestService(t *testing.T, balances map[string]int64) *ledger.Service {
	t.Helper()
	store := memory.NewStore()
	for id, bal := range balances {
		require.NoError(t, store.Save(context.Background(), domain.NewAccount(id, decimal.NewFromInt(bal))))
	}
	return ledger.NewService(store, nil)
}

func balance(t *testing.T, svc *ledger.Service, id string) decimal.Decimal {
	t.Helper()
	acc, err := svc.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func TestService_CreateAccount(t *testing.T) {
	svc := newTestService(t, nil)

	acc, err := svc.CreateAccount(context.Background(), "acc-1", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, balance(t, svc, "acc-1").Equal(decimal.NewFromInt(100)))
}

func TestService_CreateAccount_NegativeBalance(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.CreateAccount(context.Background(), "acc-1", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestService_Withdraw(t *testing.T) {
	svc := newTestService(t, map[string]int64{"acc-1": 100})

	require.NoError(t, svc.Withdraw(context.Background(), "acc-1", decimal.NewFromInt(30)))
	assert.True(t, balance(t, svc, "acc-1").Equal(decimal.NewFromInt(70)))
}

func TestService_Withdraw_InsufficientFunds(t *testing.T) {
	svc := newTestService(t, map[string]int64{"acc-1": 50})

	err := svc.Withdraw(context.Background(), "acc-1", decimal.NewFromInt(75))
	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, balance(t, svc, "acc-1").Equal(decimal.NewFromInt(50)))
}

func TestService_Deposit(t *testing.T) {
	svc := newTestService(t, map[string]int64{"acc-1": 10})

	require.NoError(t, svc.Deposit(context.Background(), "acc-1", decimal.NewFromInt(5)))
	assert.True(t, balance(t, svc, "acc-1").Equal(decimal.NewFromInt(15)))
}

func TestService_Deposit_LockTrigger(t *testing.T) {
	svc := newTestService(t, map[string]int64{"acc-1": 100})

	err := svc.Deposit(context.Background(), "acc-1", decimal.NewFromInt(10))
	var locked *domain.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "acc-1", locked.AccountID)
	assert.True(t, balance(t, svc, "acc-1").Equal(decimal.NewFromInt(100)))
}

func TestService_Transfer(t *testing.T) {
	svc := newTestService(t, map[string]int64{"a": 100, "b": 0})

	require.NoError(t, svc.Transfer(context.Background(), "a", "b", decimal.NewFromInt(50)))
	assert.True(t, balance(t, svc, "a").Equal(decimal.NewFromInt(50)))
	assert.True(t, balance(t, svc, "b").Equal(decimal.NewFromInt(50)))
}

func TestService_Transfer_InsufficientFundsLeavesBothUntouched(t *testing.T) {
	svc := newTestService(t, map[string]int64{"a": 20, "b": 5})

	err := svc.Transfer(context.Background(), "a", "b", decimal.NewFromInt(75))
	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, balance(t, svc, "a").Equal(decimal.NewFromInt(20)))
	assert.True(t, balance(t, svc, "b").Equal(decimal.NewFromInt(5)))
}

func TestService_Transfer_LockedDestinationRollsBackDebit(t *testing.T) {
	svc := newTestService(t, map[string]int64{"a": 100, "b": 0})

	err := svc.Transfer(context.Background(), "a", "b", decimal.NewFromInt(10))
	var locked *domain.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.True(t, balance(t, svc, "a").Equal(decimal.NewFromInt(100)))
	assert.True(t, balance(t, svc, "b").Equal(decimal.NewFromInt(0)))
}

func TestService_RejectsNonPositiveAmounts(t *testing.T) {
	svc := newTestService(t, map[string]int64{"a": 100, "b": 0})
	ctx := context.Background()

	assert.Error(t, svc.Withdraw(ctx, "a", decimal.Zero))
	assert.Error(t, svc.Deposit(ctx, "a", decimal.NewFromInt(-5)))
	assert.Error(t, svc.Transfer(ctx, "a", "b", decimal.Zero))
}

func TestService_UnknownAccount(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.Withdraw(context.Background(), "missing", decimal.NewFromInt(1))
	var notFound *domain.AccountNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
