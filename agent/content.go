package agent

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// ContentName identifies the content generation capability.
const ContentName = "content_agent"

const contentSystem = `You write clear, factual explanations of concepts for a knowledge base.
Respond with plain prose, no markup.`

const contentPrompt = `Write a concise explanation of "{{.Concept}}"{{if .Context}} in the context of "{{.Context}}"{{end}}.
Cover what it is, why it matters and one concrete example.`

// Content produces a prose explanation of the task's concept. It discovers no
// new concepts; its summary enriches the seed concept's node content.
type Content struct {
	generative
}

// NewContent constructs the content generation capability.
func NewContent(generator core.Generator, optFns ...func(o *Options)) *Content {
	opts := applyOptions(optFns)
	return &Content{generative{
		name:      ContentName,
		taskType:  core.TaskContent,
		generator: generator,
		exec:      opts.Executor,
		logger:    opts.Logger,
		system:    contentSystem,
	}}
}

// Process implements Capability.
func (c *Content) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	out, kind, err := c.complete(ctx, task, contentPrompt, 0.6)
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ContentName, kind, err)
		logCall(c.logger, ContentName, task.ID, start, resp)
		return resp
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		resp := core.NewAgentFailure(task.ID, ContentName, core.ErrorKindMalformed, errEmptyCompletion)
		logCall(c.logger, ContentName, task.ID, start, resp)
		return resp
	}

	payload := core.AgentPayload{Concept: task.Concept, Summary: summary}
	resp := core.NewAgentResponse(task.ID, ContentName, payload, 0.92)
	logCall(c.logger, ContentName, task.ID, start, resp)
	return resp
}
