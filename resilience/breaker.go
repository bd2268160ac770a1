package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/hupe1980/conceptmesh/logging"
)

// BreakerConfig configures a single named circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures within the
	// tracking window that trips the circuit open.
	FailureThreshold uint32
	// RecoveryTimeout is how long the circuit stays open before allowing a
	// single half-open trial call.
	RecoveryTimeout time.Duration
	// Window resets the failure counters while the circuit is closed. Zero
	// keeps counters for the lifetime of the closed state.
	Window time.Duration
	// OnStateChange, when set, is invoked on every circuit transition with
	// the operation name and the states involved.
	OnStateChange func(operation, from, to string)
}

// DefaultBreakerConfig trips after 5 consecutive failures and recovers after
// 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, RecoveryTimeout: 30 * time.Second}
}

// Breaker guards one named operation with a three-state circuit:
//
//	closed    — calls pass through; consecutive failures are counted
//	open      — calls fail immediately with CircuitOpenError
//	half-open — exactly one trial call is allowed through; success closes
//	            the circuit, failure re-opens it
//
// State is shared mutable across concurrent callers and updated atomically by
// the underlying gobreaker machine.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker creates a Breaker for the named operation.
func NewBreaker(name string, cfg BreakerConfig, logger logging.Logger) *Breaker {
	if cfg.FailureThreshold == 0 {
		def := DefaultBreakerConfig()
		cfg.FailureThreshold = def.FailureThreshold
		cfg.RecoveryTimeout = def.RecoveryTimeout
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // single trial call in half-open
		Interval:    cfg.Window,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit state changed", "operation", name, "from", from.String(), "to", to.String())
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
			}
		},
	}

	return &Breaker{name: name, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the circuit. While open (or when the half-open
// trial slot is taken) it returns a CircuitOpenError without invoking fn.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &CircuitOpenError{Operation: b.name}
	}
	return v, err
}

// State returns the current circuit state as a string ("closed", "open",
// "half-open") for status reporting and metrics.
func (b *Breaker) State() string { return b.cb.State().String() }

// Name returns the guarded operation name.
func (b *Breaker) Name() string { return b.name }
