package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// ConnectionName identifies the connection capability.
const ConnectionName = "connection_agent"

const connectionSystem = `You identify analogies, metaphors and cross-domain links for a concept.
Respond with only a JSON array of objects with keys "concept", "content", "relationship" and "weight".
Valid relationships: "analogy", "metaphor", "cross_domain".`

const connectionPrompt = `Concept: {{.Concept}}
{{if .Context}}Context: {{.Context}}
{{end}}List up to 5 related concepts as analogies, metaphors or cross-domain links.`

// Connection surfaces analogies and cross-domain links via the generator.
type Connection struct {
	generative
}

// NewConnection constructs the connection capability.
func NewConnection(generator core.Generator, optFns ...func(o *Options)) *Connection {
	opts := applyOptions(optFns)
	return &Connection{generative{
		name:      ConnectionName,
		taskType:  core.TaskConnection,
		generator: generator,
		exec:      opts.Executor,
		logger:    opts.Logger,
		system:    connectionSystem,
	}}
}

// Process implements Capability.
func (c *Connection) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	out, kind, err := c.complete(ctx, task, connectionPrompt, 0.8)
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ConnectionName, kind, err)
		logCall(c.logger, ConnectionName, task.ID, start, resp)
		return resp
	}

	concepts, err := parseConceptList(out)
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ConnectionName, core.ErrorKindMalformed, err)
		logCall(c.logger, ConnectionName, task.ID, start, resp)
		return resp
	}

	payload := core.AgentPayload{
		Concept:  task.Concept,
		Summary:  fmt.Sprintf("Identified %d connections for %q.", len(concepts), task.Concept),
		Concepts: concepts,
	}
	resp := core.NewAgentResponse(task.ID, ConnectionName, payload, 0.78)
	logCall(c.logger, ConnectionName, task.ID, start, resp)
	return resp
}
