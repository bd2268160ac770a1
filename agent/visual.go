package agent

import (
	"context"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// VisualName identifies the visual capability.
const VisualName = "visual_agent"

const visualSystem = `You design diagrams and concept maps.
Respond with only a JSON object with keys "description" (string) and "mermaid" (a Mermaid diagram definition).`

const visualPrompt = `Design a concept map for "{{.Concept}}"{{if .Context}} focused on "{{.Context}}"{{end}}.
Show the concept's main components and their relationships.`

// visualSpec is the structured diagram description produced by the model.
type visualSpec struct {
	Description string `json:"description"`
	Mermaid     string `json:"mermaid"`
}

// Visual produces a diagram description for the task's concept. The mermaid
// source is carried on the payload's Extra field; rendering is out of scope.
type Visual struct {
	generative
}

// NewVisual constructs the visual capability.
func NewVisual(generator core.Generator, optFns ...func(o *Options)) *Visual {
	opts := applyOptions(optFns)
	return &Visual{generative{
		name:      VisualName,
		taskType:  core.TaskVisual,
		generator: generator,
		exec:      opts.Executor,
		logger:    opts.Logger,
		system:    visualSystem,
	}}
}

// Process implements Capability.
func (v *Visual) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	out, kind, err := v.complete(ctx, task, visualPrompt, 0.5)
	if err != nil {
		resp := core.NewAgentFailure(task.ID, VisualName, kind, err)
		logCall(v.logger, VisualName, task.ID, start, resp)
		return resp
	}

	var spec visualSpec
	if err := parseObject(out, &spec); err != nil {
		resp := core.NewAgentFailure(task.ID, VisualName, core.ErrorKindMalformed, err)
		logCall(v.logger, VisualName, task.ID, start, resp)
		return resp
	}

	payload := core.AgentPayload{
		Concept: task.Concept,
		Summary: spec.Description,
		Extra:   map[string]any{"diagram_type": "concept_map", "mermaid": spec.Mermaid},
	}
	resp := core.NewAgentResponse(task.ID, VisualName, payload, 0.8)
	logCall(v.logger, VisualName, task.ID, start, resp)
	return resp
}
