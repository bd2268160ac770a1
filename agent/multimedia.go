package agent

import (
	"context"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// MultimediaName identifies the multimedia capability.
const MultimediaName = "multimedia_agent"

const multimediaSystem = `You plan audio and video material for explaining a concept.
Respond with only a JSON object with keys "narration" (a short spoken-word script) and "scenes" (an array of scene descriptions).`

const multimediaPrompt = `Plan a short explainer for "{{.Concept}}"{{if .Context}} with emphasis on "{{.Context}}"{{end}}.`

// mediaPlan is the structured media description produced by the model.
type mediaPlan struct {
	Narration string   `json:"narration"`
	Scenes    []string `json:"scenes"`
}

// Multimedia produces narration and scene plans for the task's concept,
// carried on the payload's Extra field. Actual media production is out of
// scope.
type Multimedia struct {
	generative
}

// NewMultimedia constructs the multimedia capability.
func NewMultimedia(generator core.Generator, optFns ...func(o *Options)) *Multimedia {
	opts := applyOptions(optFns)
	return &Multimedia{generative{
		name:      MultimediaName,
		taskType:  core.TaskMultimedia,
		generator: generator,
		exec:      opts.Executor,
		logger:    opts.Logger,
		system:    multimediaSystem,
	}}
}

// Process implements Capability.
func (m *Multimedia) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	out, kind, err := m.complete(ctx, task, multimediaPrompt, 0.7)
	if err != nil {
		resp := core.NewAgentFailure(task.ID, MultimediaName, kind, err)
		logCall(m.logger, MultimediaName, task.ID, start, resp)
		return resp
	}

	var plan mediaPlan
	if err := parseObject(out, &plan); err != nil {
		resp := core.NewAgentFailure(task.ID, MultimediaName, core.ErrorKindMalformed, err)
		logCall(m.logger, MultimediaName, task.ID, start, resp)
		return resp
	}

	payload := core.AgentPayload{
		Concept: task.Concept,
		Summary: plan.Narration,
		Extra:   map[string]any{"scenes": plan.Scenes},
	}
	resp := core.NewAgentResponse(task.ID, MultimediaName, payload, 0.75)
	logCall(m.logger, MultimediaName, task.ID, start, resp)
	return resp
}
