package domain

import "github.com/shopspring/decimal"

// Account is a ledger account. Balance never goes negative: an operation that
// would violate that fails before any mutation is committed.
type Account struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccount creates an account with an initial balance.
func NewAccount(id string, balance decimal.Decimal) *Account {
	return &Account{ID: id, Balance: balance}
}

// Withdraw debits amount from the account in memory. It returns
// InsufficientFundsError without mutating when the balance does not cover it.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			AccountID: a.ID,
			Required:  amount,
			Available: a.Balance,
		}
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Deposit credits amount to the account in memory.
func (a *Account) Deposit(amount decimal.Decimal) error {
	a.Balance = a.Balance.Add(amount)
	return nil
}
