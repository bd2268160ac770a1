package core

import (
	"errors"
	"fmt"
)

// ValidationError reports rejected caller input. It is surfaced directly to
// the public API caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown identifier.
type NotFoundError struct {
	Kind string // "exploration", "node", ...
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }

// NewNotFoundError creates a NotFoundError for the given kind and id.
func NewNotFoundError(kind, id string) *NotFoundError { return &NotFoundError{Kind: kind, ID: id} }

// InvalidStateError reports an illegal lifecycle transition, e.g. pausing a
// completed exploration or fetching results before a terminal state.
type InvalidStateError struct {
	Op      string
	Current State
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("operation %q not valid in state %q", e.Op, e.Current)
}

// GraphError reports a graph consistency violation.
type GraphError struct {
	Reason  string
	Message string
}

// DanglingReference is the GraphError reason for an edge endpoint that does
// not reference an existing node.
const DanglingReference = "dangling_reference"

// Error implements the error interface.
func (e *GraphError) Error() string { return fmt.Sprintf("graph error (%s): %s", e.Reason, e.Message) }

// NewDanglingReferenceError creates a GraphError for a missing edge endpoint.
func NewDanglingReferenceError(nodeID string) *GraphError {
	return &GraphError{Reason: DanglingReference, Message: fmt.Sprintf("edge references missing node %s", nodeID)}
}

// AgentError wraps a failed agent process call. It is contained within the
// exploration; the orchestrator converts it to a failed task, never to a
// failed exploration.
type AgentError struct {
	Agent string
	Kind  ErrorKind
	Err   error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s failed (%s): %v", e.Agent, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *AgentError) Unwrap() error { return e.Err }

// ErrEmbeddingUnavailable signals that an embedding could not be produced.
// Callers degrade to lexical matching instead of failing.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// EmbeddingError wraps an embedding provider failure while matching
// ErrEmbeddingUnavailable in errors.Is chains.
type EmbeddingError struct {
	Text string
	Err  error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }

// Unwrap exposes the underlying cause.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is reports true for ErrEmbeddingUnavailable so call sites can branch on the
// sentinel without knowing the concrete type.
func (e *EmbeddingError) Is(target error) bool { return target == ErrEmbeddingUnavailable }
