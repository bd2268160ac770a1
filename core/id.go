package core

import "github.com/google/uuid"

// NewID generates a unique identifier for explorations, tasks, nodes and
// edges. Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
