package domain

import "time"

// RetryPolicy controls how the host re-attempts a failed activity.
type RetryPolicy struct {
	InitialInterval time.Duration `json:"initial_interval" yaml:"initial_interval"`
	MaximumInterval time.Duration `json:"maximum_interval" yaml:"maximum_interval"`
	BackoffFactor   float64       `json:"backoff_factor" yaml:"backoff_factor"`
	MaximumAttempts int           `json:"maximum_attempts" yaml:"maximum_attempts"`
}

// DefaultRetryPolicy matches the transfer workflow contract: exponential
// backoff between 1s and 10s, at most 5 attempts, business errors non-retryable.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 1 * time.Second,
		MaximumInterval: 10 * time.Second,
		BackoffFactor:   2.0,
		MaximumAttempts: 5,
	}
}

// Interval returns the backoff delay before the given attempt (1-based).
func (p RetryPolicy) Interval(attempt int) time.Duration {
	interval := p.InitialInterval
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * p.BackoffFactor)
		if p.MaximumInterval > 0 && interval > p.MaximumInterval {
			return p.MaximumInterval
		}
	}
	if p.MaximumInterval > 0 && interval > p.MaximumInterval {
		return p.MaximumInterval
	}
	return interval
}
