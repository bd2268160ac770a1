package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh/core"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoversAfterTransientFailures(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, ExponentialBase: 2, MaxDelay: 10 * time.Millisecond}
	calls := 0
	err := Retry(context.Background(), "op", policy, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustionWrapsLastError(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, ExponentialBase: 2, MaxDelay: 10 * time.Millisecond}
	lastErr := errors.New("still down")
	calls := 0
	err := Retry(context.Background(), "op", policy, func(ctx context.Context) error {
		calls++
		return lastErr
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, lastErr)
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	vErr := core.NewValidationError("concept", "must not be empty")
	err := Retry(context.Background(), "op", DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return vErr
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var validationErr *core.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	var exhausted *RetryExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestRetry_DelaysGrowExponentially(t *testing.T) {
	policy := Policy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond, ExponentialBase: 2, MaxDelay: time.Second, Jitter: 0}

	var stamps []time.Time
	err := Retry(context.Background(), "op", policy, func(ctx context.Context) error {
		stamps = append(stamps, time.Now())
		return errors.New("transient")
	})
	require.Error(t, err)
	require.Len(t, stamps, 3)

	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 40*time.Millisecond)
}

func TestRetry_ContextCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, ExponentialBase: 2, MaxDelay: time.Second}

	calls := 0
	err := Retry(ctx, "op", policy, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_NormalizeFillsDefaults(t *testing.T) {
	p := Policy{}.normalize()
	assert.Equal(t, DefaultPolicy().MaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultPolicy().BaseDelay, p.BaseDelay)
	assert.Equal(t, DefaultPolicy().ExponentialBase, p.ExponentialBase)
}
