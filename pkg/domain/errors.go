package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InsufficientFundsError is returned when a withdrawal exceeds the account balance.
type InsufficientFundsError struct {
	AccountID string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: required %s, available %s",
		e.AccountID, e.Required, e.Available)
}

// AccountNotFoundError is returned when an account id does not resolve.
type AccountNotFoundError struct {
	AccountID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

// AccountLockedError is returned when an operation hits a locked account.
type AccountLockedError struct {
	AccountID string
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account %s locked", e.AccountID)
}

// IsBusinessError reports whether err belongs to the business-failure class.
// Business failures are caller-actionable and must never be retried.
func IsBusinessError(err error) bool {
	return errors.As(err, new(*InsufficientFundsError)) ||
		errors.As(err, new(*AccountNotFoundError)) ||
		errors.As(err, new(*AccountLockedError))
}

// errorTypeName maps a domain error to the name carried over the wire.
func errorTypeName(err error) string {
	switch {
	case errors.As(err, new(*InsufficientFundsError)):
		return "InsufficientFundsError"
	case errors.As(err, new(*AccountNotFoundError)):
		return "AccountNotFoundError"
	case errors.As(err, new(*AccountLockedError)):
		return "AccountLockedError"
	default:
		return "Error"
	}
}

// ActivityError is the wire-safe projection of a domain failure. It crosses the
// activity → workflow boundary so the workflow layer can match on Type without
// depending on concrete error types.
type ActivityError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *ActivityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewActivityError wraps a domain error into its envelope form.
func NewActivityError(err error) *ActivityError {
	return &ActivityError{
		Type:    errorTypeName(err),
		Message: err.Error(),
	}
}

// Kind normalizes the envelope type into the result-facing error kind:
// lower-cased with the "Error" suffix stripped, e.g.
// InsufficientFundsError -> "insufficientfunds".
func (e *ActivityError) Kind() string {
	return strings.ReplaceAll(strings.ToLower(e.Type), "error", "")
}
