package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/calvora/conveyor/pkg/domain"
)

func TestIsBusinessError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"insufficient funds", &domain.InsufficientFundsError{AccountID: "a"}, true},
		{"not found", &domain.AccountNotFoundError{AccountID: "a"}, true},
		{"locked", &domain.AccountLockedError{AccountID: "a"}, true},
		{"wrapped business", fmt.Errorf("withdraw: %w", &domain.AccountLockedError{AccountID: "a"}), true},
		{"infra", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsBusinessError(tt.err))
		})
	}
}

func TestNewActivityError(t *testing.T) {
	src := &domain.InsufficientFundsError{
		AccountID: "acc-1",
		Required:  decimal.NewFromInt(75),
		Available: decimal.NewFromInt(50),
	}

	env := domain.NewActivityError(src)
	assert.Equal(t, "InsufficientFundsError", env.Type)
	assert.Equal(t, src.Error(), env.Message)
}

func TestActivityError_Kind(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"InsufficientFundsError", "insufficientfunds"},
		{"AccountNotFoundError", "accountnotfound"},
		{"AccountLockedError", "accountlocked"},
		{"Error", ""},
	}
	for _, tt := range tests {
		env := &domain.ActivityError{Type: tt.typ}
		assert.Equal(t, tt.want, env.Kind())
	}
}
