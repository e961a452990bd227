package host

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/calvora/conveyor/internal/observability"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/ports"
	"github.com/calvora/conveyor/pkg/registry"
)

// Host is the in-process durable-execution host. It dispatches activity calls
// against the registry, applying per-attempt timeouts and the retry policy:
// infrastructure failures are retried with exponential backoff up to the
// attempt ceiling, business failures (an *domain.ActivityError cause) are
// terminal on the first occurrence.
//
// A production deployment would put a checkpointing engine behind the same
// ports.Host interface; workflow code does not know the difference.
type Host struct {
	registry *registry.Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
	sleep    func(ctx context.Context, d time.Duration) error
}

var _ ports.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithMetrics wires the orchestration counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// New creates a host over the given activity registry.
func New(reg *registry.Registry, opts ...Option) *Host {
	h := &Host{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExecuteActivity implements ports.Host.
func (h *Host) ExecuteActivity(ctx context.Context, name string, policy domain.RetryPolicy, timeout time.Duration, args ...any) (any, error) {
	maxAttempts := policy.MaximumAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		h.countAttempt(name)

		result, err := h.invoke(ctx, name, timeout, args)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var envelope *domain.ActivityError
		if errors.As(err, &envelope) {
			h.logger.Error("activity failed with business error",
				"activity", name, "attempt", attempt, "type", envelope.Type, "err", err)
			h.countFailure(name, "business")
			return nil, &ports.ActivityFailure{
				Activity: name,
				Attempts: attempt,
				Envelope: envelope,
				Cause:    err,
			}
		}

		if attempt == maxAttempts {
			break
		}

		delay := policy.Interval(attempt)
		h.logger.Warn("activity failed, retrying",
			"activity", name, "attempt", attempt, "delay", delay, "err", err)
		h.countRetry(name)
		if err := h.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	h.logger.Error("activity failed, attempts exhausted",
		"activity", name, "attempts", maxAttempts, "err", lastErr)
	h.countFailure(name, "infra")
	return nil, &ports.ActivityFailure{
		Activity: name,
		Attempts: maxAttempts,
		Cause:    lastErr,
	}
}

// invoke runs a single attempt, bounded by the start-to-close timeout.
func (h *Host) invoke(ctx context.Context, name string, timeout time.Duration, args []any) (any, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return h.registry.Execute(ctx, name, args)
}

func (h *Host) countAttempt(name string) {
	if h.metrics != nil {
		h.metrics.ActivityAttempts.WithLabelValues(name).Inc()
	}
}

func (h *Host) countRetry(name string) {
	if h.metrics != nil {
		h.metrics.ActivityRetries.WithLabelValues(name).Inc()
	}
}

func (h *Host) countFailure(name, class string) {
	if h.metrics != nil {
		h.metrics.ActivityFailures.WithLabelValues(name, class).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
