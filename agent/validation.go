package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/internal/util"
)

// ValidationName identifies the validation capability.
const ValidationName = "validation_agent"

const validationSystem = `You fact-check concept material for a knowledge base.
Respond with only a JSON object with keys "verdict" ("accurate", "questionable" or "inaccurate"),
"quality" (a number in [0,1]) and "notes" (string).`

const validationPrompt = `Concept: {{.Concept}}
{{if .Context}}Context: {{.Context}}
{{end}}Known neighboring concepts: {{.Neighbors}}
Assess the factual soundness and coherence of this concept.`

// verdict is the structured assessment produced by the model.
type verdict struct {
	Verdict string  `json:"verdict"`
	Quality float64 `json:"quality"`
	Notes   string  `json:"notes"`
}

// GraphReader is the read-only view of the knowledge graph the validation
// capability uses to gather neighborhood evidence.
type GraphReader interface {
	NodeByConcept(concept string) (core.ConceptNode, bool)
	GetNeighbors(nodeID string) ([]core.ConceptNode, error)
}

// Validation fact-checks the task's concept, consulting the graph for
// neighboring concepts as evidence. Its quality score flows into the node's
// QualityScore on merge.
type Validation struct {
	generative
	graph GraphReader
}

// NewValidation constructs the validation capability. graph may be nil; the
// assessment then runs without neighborhood evidence.
func NewValidation(generator core.Generator, graph GraphReader, optFns ...func(o *Options)) *Validation {
	opts := applyOptions(optFns)
	return &Validation{
		generative: generative{
			name:      ValidationName,
			taskType:  core.TaskValidation,
			generator: generator,
			exec:      opts.Executor,
			logger:    opts.Logger,
			system:    validationSystem,
		},
		graph: graph,
	}
}

// Process implements Capability.
func (v *Validation) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	prompt, err := util.RenderTemplate(validationPrompt, map[string]any{
		"Concept":   task.Concept,
		"Context":   task.Context,
		"Neighbors": v.neighborSummary(task.Concept),
	})
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ValidationName, core.ErrorKindMalformed, err)
		logCall(v.logger, ValidationName, task.ID, start, resp)
		return resp
	}

	out, err := guard(ctx, v.exec, ValidationName, func(ctx context.Context) (any, error) {
		return v.generator.Generate(ctx, prompt, core.GenerateOptions{
			System:      validationSystem,
			Temperature: 0.2,
			MaxTokens:   512,
		})
	})
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ValidationName, classifyError(err), err)
		logCall(v.logger, ValidationName, task.ID, start, resp)
		return resp
	}

	var assessment verdict
	if err := parseObject(out.(string), &assessment); err != nil {
		resp := core.NewAgentFailure(task.ID, ValidationName, core.ErrorKindMalformed, err)
		logCall(v.logger, ValidationName, task.ID, start, resp)
		return resp
	}

	payload := core.AgentPayload{
		Concept: task.Concept,
		Summary: fmt.Sprintf("Validation verdict: %s. %s", assessment.Verdict, assessment.Notes),
		Extra:   map[string]any{"verdict": assessment.Verdict, "quality": assessment.Quality},
	}
	resp := core.NewAgentResponse(task.ID, ValidationName, payload, assessment.Quality)
	logCall(v.logger, ValidationName, task.ID, start, resp)
	return resp
}

// neighborSummary lists concepts adjacent to the task's concept, or "none" if
// the graph has no matching node yet.
func (v *Validation) neighborSummary(concept string) string {
	if v.graph == nil {
		return "none"
	}
	node, ok := v.graph.NodeByConcept(concept)
	if !ok {
		return "none"
	}
	neighbors, err := v.graph.GetNeighbors(node.ID)
	if err != nil || len(neighbors) == 0 {
		return "none"
	}
	names := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		names = append(names, n.Concept)
	}
	if len(names) > 8 {
		names = names[:8]
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}
