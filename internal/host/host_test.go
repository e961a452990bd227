package host_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conveyor/internal/host"
	"github.com/calvora/conveyor/internal/observability"
	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/ports"
	"github.com/calvora/conveyor/pkg/registry"
)

// fastPolicy keeps backoff delays negligible so retry tests run instantly.
func fastPolicy(attempts int) domain.RetryPolicy {
	return domain.RetryPolicy{
		InitialInterval: time.Millisecond,
		MaximumInterval: 2 * time.Millisecond,
		BackoffFactor:   2.0,
		MaximumAttempts: attempts,
	}
}

func TestHost_Success(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("echo", func(ctx context.Context, args []any) (any, error) {
		return args[0], nil
	})
	h := host.New(reg)

	out, err := h.ExecuteActivity(context.Background(), "echo", fastPolicy(5), time.Second, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestHost_BusinessErrorNotRetried(t *testing.T) {
	calls := 0
	reg := registry.New()
	reg.MustRegister("withdraw", func(ctx context.Context, args []any) (any, error) {
		calls++
		return nil, domain.NewActivityError(&domain.InsufficientFundsError{AccountID: "a"})
	})
	h := host.New(reg)

	_, err := h.ExecuteActivity(context.Background(), "withdraw", fastPolicy(5), time.Second)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var failure *ports.ActivityFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 1, failure.Attempts)
	require.NotNil(t, failure.Envelope)
	assert.Equal(t, "InsufficientFundsError", failure.Envelope.Type)
}

func TestHost_WrappedBusinessErrorNotRetried(t *testing.T) {
	calls := 0
	reg := registry.New()
	reg.MustRegister("deposit", func(ctx context.Context, args []any) (any, error) {
		calls++
		env := domain.NewActivityError(&domain.AccountLockedError{AccountID: "b"})
		return nil, errors.Join(errors.New("deposit failed"), env)
	})
	h := host.New(reg)

	_, err := h.ExecuteActivity(context.Background(), "deposit", fastPolicy(5), time.Second)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var failure *ports.ActivityFailure
	require.ErrorAs(t, err, &failure)
	require.NotNil(t, failure.Envelope)
	assert.Equal(t, "AccountLockedError", failure.Envelope.Type)
}

func TestHost_InfraErrorRetriedToExhaustion(t *testing.T) {
	calls := 0
	reg := registry.New()
	reg.MustRegister("flaky", func(ctx context.Context, args []any) (any, error) {
		calls++
		return nil, errors.New("connection refused")
	})
	h := host.New(reg)

	_, err := h.ExecuteActivity(context.Background(), "flaky", fastPolicy(5), time.Second)
	require.Error(t, err)
	assert.Equal(t, 5, calls)

	var failure *ports.ActivityFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 5, failure.Attempts)
	assert.Nil(t, failure.Envelope)
	assert.Contains(t, failure.Cause.Error(), "connection refused")
}

func TestHost_InfraErrorRecoversWithinBudget(t *testing.T) {
	calls := 0
	reg := registry.New()
	reg.MustRegister("flaky", func(ctx context.Context, args []any) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "done", nil
	})
	h := host.New(reg)

	out, err := h.ExecuteActivity(context.Background(), "flaky", fastPolicy(5), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, calls)
}

func TestHost_PerAttemptTimeout(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("slow", func(ctx context.Context, args []any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "too late", nil
		}
	})
	h := host.New(reg)

	_, err := h.ExecuteActivity(context.Background(), "slow", fastPolicy(2), 10*time.Millisecond)
	var failure *ports.ActivityFailure
	require.ErrorAs(t, err, &failure)
	assert.ErrorIs(t, failure.Cause, context.DeadlineExceeded)
}

func TestHost_Metrics(t *testing.T) {
	reg := registry.New()
	calls := 0
	reg.MustRegister("flaky", func(ctx context.Context, args []any) (any, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return nil, nil
	})
	reg.MustRegister("locked", func(ctx context.Context, args []any) (any, error) {
		return nil, domain.NewActivityError(&domain.AccountLockedError{AccountID: "a"})
	})

	m := observability.New(prometheus.NewRegistry())
	h := host.New(reg, host.WithMetrics(m))
	ctx := context.Background()

	_, err := h.ExecuteActivity(ctx, "flaky", fastPolicy(5), time.Second)
	require.NoError(t, err)
	_, err = h.ExecuteActivity(ctx, "locked", fastPolicy(5), time.Second)
	require.Error(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ActivityAttempts.WithLabelValues("flaky")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActivityRetries.WithLabelValues("flaky")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActivityFailures.WithLabelValues("locked", "business")))
}
