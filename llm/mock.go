package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
)

// MockGenerator is a lightweight in-memory core.Generator useful for tests &
// examples. Responses are matched by prompt substring in registration order;
// unmatched prompts get a deterministic fallback.
type MockGenerator struct {
	mu        sync.Mutex
	keys      []string
	responses map[string]string
	err       error
	calls     int
}

// NewMockGenerator constructs an empty MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{responses: make(map[string]string)}
}

// AddResponse registers a canned completion returned for any prompt that
// contains match.
func (m *MockGenerator) AddResponse(match, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.responses[match]; !exists {
		m.keys = append(m.keys, match)
	}
	m.responses[match] = response
}

// Fail makes every subsequent Generate call return err (nil restores normal
// operation).
func (m *MockGenerator) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many Generate calls reached the mock.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements core.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, _ core.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	for _, k := range m.keys {
		if strings.Contains(prompt, k) {
			return m.responses[k], nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}
