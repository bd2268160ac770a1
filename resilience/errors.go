package resilience

import (
	"errors"
	"fmt"

	"github.com/hupe1980/conceptmesh/core"
)

// CircuitOpenError is returned immediately, without attempting the downstream
// call, while the named circuit is open.
type CircuitOpenError struct {
	Operation string
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker '%s' is open", e.Operation)
}

// RetryExhaustedError wraps the last underlying failure after all retry
// attempts were consumed.
type RetryExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("operation '%s' failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap exposes the last underlying failure for errors.Is/As chains.
func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// IsPermanent reports whether err must not be retried. Validation errors are
// caller bugs and an open circuit cannot heal within a single invocation, so
// both stop the retry loop immediately.
func IsPermanent(err error) bool {
	var (
		validationErr *core.ValidationError
		openErr       *CircuitOpenError
	)
	return errors.As(err, &validationErr) || errors.As(err, &openErr)
}
