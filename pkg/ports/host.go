package ports

import (
	"context"
	"time"

	"github.com/calvora/conveyor/pkg/domain"
)

// Host is the durable-execution collaborator the orchestration core runs on.
// It owns retry, per-attempt timeouts and (in a production deployment)
// checkpointing and at-least-once delivery; workflow code only issues activity
// calls through it and suspends until a result or final failure arrives.
type Host interface {
	// ExecuteActivity invokes the named registered activity with positional
	// arguments, applying the retry policy. Business failures (an
	// *domain.ActivityError cause) are never retried. The returned error is
	// an *ActivityFailure once attempts are exhausted or the failure is
	// non-retryable.
	ExecuteActivity(ctx context.Context, name string, policy domain.RetryPolicy, timeout time.Duration, args ...any) (any, error)
}

// ActivityFailure is the host's terminal failure for one activity call.
// Envelope is set when the underlying cause was a business error.
type ActivityFailure struct {
	Activity string
	Attempts int
	Envelope *domain.ActivityError
	Cause    error
}

func (f *ActivityFailure) Error() string {
	if f.Envelope != nil {
		return "activity " + f.Activity + " failed: " + f.Envelope.Error()
	}
	if f.Cause != nil {
		return "activity " + f.Activity + " failed: " + f.Cause.Error()
	}
	return "activity " + f.Activity + " failed"
}

func (f *ActivityFailure) Unwrap() error {
	if f.Envelope != nil {
		return f.Envelope
	}
	return f.Cause
}
