package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures retry behavior for guarded operations.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first call.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// ExponentialBase multiplies the delay after each failed attempt.
	ExponentialBase float64
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// Jitter randomizes each delay by ±(Jitter * delay). Zero disables it.
	Jitter float64
}

// DefaultPolicy mirrors the defaults used across the pipeline: three attempts
// with 100ms base delay doubling up to 5s, ±10% jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		BaseDelay:       100 * time.Millisecond,
		ExponentialBase: 2.0,
		MaxDelay:        5 * time.Second,
		Jitter:          0.1,
	}
}

// normalize fills zero fields with defaults so a partially specified policy
// still behaves sanely.
func (p Policy) normalize() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.ExponentialBase <= 1 {
		p.ExponentialBase = d.ExponentialBase
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	return p
}

// backOff builds the context-aware backoff schedule for this policy.
func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = p.ExponentialBase
	eb.MaxInterval = p.MaxDelay
	eb.RandomizationFactor = p.Jitter
	eb.MaxElapsedTime = 0 // bounded by attempt count, not wall clock
	eb.Reset()

	var b backoff.BackOff = eb
	b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	return backoff.WithContext(b, ctx)
}

// Retry executes fn up to MaxAttempts times, delaying
// min(BaseDelay * ExponentialBase^(attempt-1), MaxDelay) ± jitter between
// attempts. Permanent failures (see IsPermanent) are returned immediately.
// When all attempts fail the last error is wrapped in a RetryExhaustedError.
func Retry(ctx context.Context, operation string, policy Policy, fn func(ctx context.Context) error) error {
	policy = policy.normalize()

	var lastErr error
	err := backoff.Retry(func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy.backOff(ctx))

	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		return err
	}
	if ctx.Err() != nil && lastErr == nil {
		lastErr = ctx.Err()
	}
	return &RetryExhaustedError{Operation: operation, Attempts: policy.MaxAttempts, Err: lastErr}
}
