package agent

import (
	"context"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/internal/util"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/resilience"
)

// generative bundles the shared plumbing of the five generator-backed
// capabilities: prompt rendering, guarded completion and error containment.
type generative struct {
	name      string
	taskType  core.TaskType
	generator core.Generator
	exec      *resilience.Executor
	logger    logging.Logger
	system    string
}

// complete renders the prompt template against the task and runs one guarded
// generation. A non-nil ErrorKind return means the call failed and the
// capability should emit a failure response.
func (g *generative) complete(ctx context.Context, task *core.ExplorationTask, promptTmpl string, temperature float64) (string, core.ErrorKind, error) {
	prompt, err := util.RenderTemplate(promptTmpl, map[string]any{
		"Concept": task.Concept,
		"Context": task.Context,
	})
	if err != nil {
		return "", core.ErrorKindMalformed, err
	}

	out, err := guard(ctx, g.exec, g.name, func(ctx context.Context) (any, error) {
		return g.generator.Generate(ctx, prompt, core.GenerateOptions{
			System:      g.system,
			Temperature: temperature,
			MaxTokens:   1024,
		})
	})
	if err != nil {
		return "", classifyError(err), err
	}
	return out.(string), core.ErrorKindNone, nil
}

func (g *generative) Name() string        { return g.name }
func (g *generative) Type() core.TaskType { return g.taskType }
