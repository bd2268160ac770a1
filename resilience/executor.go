package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/conceptmesh/logging"
)

// Options configure an Executor.
type Options struct {
	// Policy is the retry policy applied around every guarded call.
	Policy Policy
	// Breaker is the circuit configuration applied per operation name.
	Breaker BreakerConfig
	// AttemptTimeout bounds a single attempt. Exceeding it counts as a
	// transient failure for retry purposes. Zero disables the bound.
	AttemptTimeout time.Duration
	// Logger receives state change and retry diagnostics.
	Logger logging.Logger
}

// Executor is the single entry point for guarded collaborator calls. It lazily
// maintains one Breaker per operation name and applies the retry policy around
// each circuit-guarded attempt.
type Executor struct {
	policy         Policy
	breakerCfg     BreakerConfig
	attemptTimeout time.Duration
	logger         logging.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewExecutor constructs an Executor with optional overrides.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Policy:  DefaultPolicy(),
		Breaker: DefaultBreakerConfig(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Executor{
		policy:         opts.Policy,
		breakerCfg:     opts.Breaker,
		attemptTimeout: opts.AttemptTimeout,
		logger:         opts.Logger,
		breakers:       make(map[string]*Breaker),
	}
}

// breaker returns the circuit for the named operation, creating it on first use.
func (e *Executor) breaker(operation string) *Breaker {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.breakers[operation]
	if !ok {
		b = NewBreaker(operation, e.breakerCfg, e.logger)
		e.breakers[operation] = b
	}
	return b
}

// BreakerState reports the circuit state for the named operation, or "closed"
// if the operation has never been guarded.
func (e *Executor) BreakerState(operation string) string {
	e.mu.Lock()
	b, ok := e.breakers[operation]
	e.mu.Unlock()
	if !ok {
		return "closed"
	}
	return b.State()
}

// Do executes fn guarded by the named circuit and the retry policy.
func (e *Executor) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := e.DoValue(ctx, operation, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func (e *Executor) DoValue(ctx context.Context, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	b := e.breaker(operation)

	var result any
	err := Retry(ctx, operation, e.policy, func(ctx context.Context) error {
		attemptCtx := ctx
		if e.attemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, e.attemptTimeout)
			defer cancel()
		}

		v, err := b.Execute(func() (any, error) { return fn(attemptCtx) })
		if err != nil {
			e.logger.Debug("guarded call failed", "operation", operation, "error", err.Error())
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
