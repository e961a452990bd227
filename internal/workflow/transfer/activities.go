package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/calvora/conveyor/internal/ledger"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/registry"
	"github.com/shopspring/decimal"
)

// Activity names registered by this workflow.
const (
	ActivityWithdraw = "withdraw"
	ActivityDeposit  = "deposit"
	ActivityTransfer = "transfer"
)

// Activities adapts the ledger service into registry activities. Domain errors
// never cross the activity boundary untranslated: business failures are
// wrapped into the ActivityError envelope so the host treats them as
// non-retryable and the workflow can match on the type name.
type Activities struct {
	svc    *ledger.Service
	logger *slog.Logger
}

// NewActivities creates the account activity set.
func NewActivities(svc *ledger.Service, logger *slog.Logger) *Activities {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Activities{svc: svc, logger: logger}
}

// Register adds the account activities to the registry.
func (a *Activities) Register(reg *registry.Registry) error {
	if err := reg.Register(ActivityWithdraw, a.withdraw); err != nil {
		return err
	}
	if err := reg.Register(ActivityDeposit, a.deposit); err != nil {
		return err
	}
	return reg.Register(ActivityTransfer, a.transfer)
}

func (a *Activities) withdraw(ctx context.Context, args []any) (any, error) {
	accountID, amount, err := accountArgs(ActivityWithdraw, args)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Withdraw(ctx, accountID, amount); err != nil {
		return nil, a.translate(ActivityWithdraw, err)
	}
	return nil, nil
}

func (a *Activities) deposit(ctx context.Context, args []any) (any, error) {
	accountID, amount, err := accountArgs(ActivityDeposit, args)
	if err != nil {
		return nil, err
	}
	if err := a.svc.Deposit(ctx, accountID, amount); err != nil {
		return nil, a.translate(ActivityDeposit, err)
	}
	return nil, nil
}

func (a *Activities) transfer(ctx context.Context, args []any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%s: expected 3 arguments, got %d", ActivityTransfer, len(args))
	}
	fromID, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: from account id must be a string", ActivityTransfer)
	}
	toID, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("%s: to account id must be a string", ActivityTransfer)
	}
	amount, err := decimalArg(ActivityTransfer, args[2])
	if err != nil {
		return nil, err
	}
	if err := a.svc.Transfer(ctx, fromID, toID, amount); err != nil {
		return nil, a.translate(ActivityTransfer, err)
	}
	return nil, nil
}

// translate wraps business failures into the wire-safe envelope and lets
// infrastructure failures pass through for the host to retry.
func (a *Activities) translate(activity string, err error) error {
	if domain.IsBusinessError(err) {
		a.logger.Error("activity business failure", "activity", activity, "err", err)
		return domain.NewActivityError(err)
	}
	return fmt.Errorf("%s: %w", activity, err)
}

func accountArgs(activity string, args []any) (string, decimal.Decimal, error) {
	if len(args) != 2 {
		return "", decimal.Decimal{}, fmt.Errorf("%s: expected 2 arguments, got %d", activity, len(args))
	}
	accountID, ok := args[0].(string)
	if !ok {
		return "", decimal.Decimal{}, fmt.Errorf("%s: account id must be a string", activity)
	}
	amount, err := decimalArg(activity, args[1])
	if err != nil {
		return "", decimal.Decimal{}, err
	}
	return accountID, amount, nil
}

// decimalArg accepts the numeric shapes an amount arrives in: native floats
// from Go callers and json-decoded request payloads, or decimals passed
// straight through.
func decimalArg(activity string, arg any) (decimal.Decimal, error) {
	switch v := arg.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%s: amount must be numeric, got %T", activity, arg)
	}
}
