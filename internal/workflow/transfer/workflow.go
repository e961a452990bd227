package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/calvora/conveyor/internal/observability"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/ports"
)

// Input is the saga entry point payload.
type Input struct {
	FromAccountID string  `json:"from_account_id"`
	ToAccountID   string  `json:"to_account_id"`
	Amount        float64 `json:"amount"`
}

// Workflow moves an amount between two accounts as one logical operation.
// Run uses the primitive form: withdraw and deposit inside one activity
// boundary, giving true atomicity. RunSteps uses the saga form: two
// independently retried steps with a compensating deposit when the second
// step fails after the first committed.
type Workflow struct {
	host    ports.Host
	policy  domain.RetryPolicy
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithRetryPolicy overrides the activity retry policy.
func WithRetryPolicy(policy domain.RetryPolicy) Option {
	return func(w *Workflow) {
		w.policy = policy
	}
}

// WithActivityTimeout overrides the per-attempt activity timeout.
func WithActivityTimeout(timeout time.Duration) Option {
	return func(w *Workflow) {
		w.timeout = timeout
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithMetrics wires the workflow run counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

// NewWorkflow creates a transfer workflow bound to a host.
func NewWorkflow(h ports.Host, opts ...Option) *Workflow {
	w := &Workflow{
		host:    h,
		policy:  domain.DefaultRetryPolicy(),
		timeout: 10 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes the transfer through the single all-or-nothing transfer
// activity and maps the outcome to the caller-facing result.
func (w *Workflow) Run(ctx context.Context, input Input) domain.TransferResult {
	if input.Amount <= 0 {
		return w.finish(domain.RunFailedBusiness, domain.TransferResult{
			Status:  "failed",
			Error:   "unexpected_error",
			Message: "amount must be positive",
		})
	}

	w.logger.Info("transfer started",
		"from", input.FromAccountID, "to", input.ToAccountID, "amount", input.Amount)

	_, err := w.host.ExecuteActivity(ctx, ActivityTransfer, w.policy, w.timeout,
		input.FromAccountID, input.ToAccountID, input.Amount)
	if err != nil {
		return w.fail(err)
	}

	w.logger.Info("transfer completed",
		"from", input.FromAccountID, "to", input.ToAccountID, "amount", input.Amount)
	return w.finish(domain.RunCompleted, domain.TransferResult{
		Status:      "completed",
		FromAccount: input.FromAccountID,
		ToAccount:   input.ToAccountID,
		Amount:      input.Amount,
	})
}

// RunSteps executes the transfer as two independently retried activities.
// When the deposit fails after a committed withdraw, the debited amount is
// deposited back before the failure is reported, so no debited-but-uncredited
// state survives the workflow.
func (w *Workflow) RunSteps(ctx context.Context, input Input) domain.TransferResult {
	if input.Amount <= 0 {
		return w.finish(domain.RunFailedBusiness, domain.TransferResult{
			Status:  "failed",
			Error:   "unexpected_error",
			Message: "amount must be positive",
		})
	}

	if _, err := w.host.ExecuteActivity(ctx, ActivityWithdraw, w.policy, w.timeout,
		input.FromAccountID, input.Amount); err != nil {
		return w.fail(err)
	}

	if _, err := w.host.ExecuteActivity(ctx, ActivityDeposit, w.policy, w.timeout,
		input.ToAccountID, input.Amount); err != nil {
		w.compensate(ctx, input)
		return w.fail(err)
	}

	return w.finish(domain.RunCompleted, domain.TransferResult{
		Status:      "completed",
		FromAccount: input.FromAccountID,
		ToAccount:   input.ToAccountID,
		Amount:      input.Amount,
	})
}

// compensate returns the withdrawn amount to the source account. A failed
// compensation is logged and left to the host's at-least-once delivery; the
// workflow result still reports the original failure.
func (w *Workflow) compensate(ctx context.Context, input Input) {
	w.logger.Warn("deposit failed, compensating withdraw",
		"from", input.FromAccountID, "amount", input.Amount)
	if _, err := w.host.ExecuteActivity(ctx, ActivityDeposit, w.policy, w.timeout,
		input.FromAccountID, input.Amount); err != nil {
		w.logger.Error("compensation failed", "from", input.FromAccountID, "err", err)
	}
}

// fail maps a host failure to the structured result. Business failures carry
// the normalized kind from the envelope; exhausted infrastructure retries
// report activity_error; anything else is unexpected_error.
func (w *Workflow) fail(err error) domain.TransferResult {
	var failure *ports.ActivityFailure
	if errors.As(err, &failure) {
		if failure.Envelope != nil {
			w.logger.Error("transfer failed with business error",
				"kind", failure.Envelope.Kind(), "message", failure.Envelope.Message)
			return w.finish(domain.RunFailedBusiness, domain.TransferResult{
				Status:  "failed",
				Error:   failure.Envelope.Kind(),
				Message: failure.Envelope.Message,
			})
		}
		w.logger.Error("transfer failed after retries",
			"activity", failure.Activity, "attempts", failure.Attempts, "err", failure.Cause)
		return w.finish(domain.RunFailedInfra, domain.TransferResult{
			Status:  "failed",
			Error:   "activity_error",
			Message: failure.Error(),
		})
	}

	w.logger.Error("unexpected error in transfer", "err", err)
	return w.finish(domain.RunFailedInfra, domain.TransferResult{
		Status:  "failed",
		Error:   "unexpected_error",
		Message: err.Error(),
	})
}

func (w *Workflow) finish(status domain.RunStatus, result domain.TransferResult) domain.TransferResult {
	if w.metrics != nil {
		w.metrics.WorkflowRuns.WithLabelValues("transfer", string(status)).Inc()
	}
	return result
}
