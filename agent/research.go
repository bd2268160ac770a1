package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/resilience"
)

// ResearchName identifies the research capability.
const ResearchName = "research_agent"

// researchMaxResults bounds one retrieval round per task.
const researchMaxResults = 5

// Research retrieves documents for the task's concept and surfaces each
// retrieved source as a discovered fact. It is the only capability backed by
// a core.Searcher instead of a Generator.
type Research struct {
	searcher core.Searcher
	exec     *resilience.Executor
	logger   logging.Logger
}

// NewResearch constructs the research capability.
func NewResearch(searcher core.Searcher, optFns ...func(o *Options)) *Research {
	opts := applyOptions(optFns)
	return &Research{searcher: searcher, exec: opts.Executor, logger: opts.Logger}
}

// Name implements Capability.
func (r *Research) Name() string { return ResearchName }

// Type implements Capability.
func (r *Research) Type() core.TaskType { return core.TaskResearch }

// Process implements Capability.
func (r *Research) Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	start := time.Now()

	query := task.Concept
	if task.Context != "" {
		query = task.Concept + " " + task.Context
	}

	out, err := guard(ctx, r.exec, ResearchName, func(ctx context.Context) (any, error) {
		return r.searcher.Search(ctx, query, researchMaxResults)
	})
	if err != nil {
		resp := core.NewAgentFailure(task.ID, ResearchName, classifyError(err), err)
		logCall(r.logger, ResearchName, task.ID, start, resp)
		return resp
	}
	docs := out.([]core.Document)

	concepts := make([]core.DiscoveredConcept, 0, len(docs))
	sources := make([]map[string]string, 0, len(docs))
	for _, d := range docs {
		concepts = append(concepts, core.DiscoveredConcept{
			Concept:      d.Title,
			Content:      d.Snippet,
			Relationship: "fact",
			Weight:       0.6,
		})
		sources = append(sources, map[string]string{"title": d.Title, "url": d.URL, "type": d.Source})
	}

	payload := core.AgentPayload{
		Concept:  task.Concept,
		Summary:  fmt.Sprintf("Retrieved %d sources for %q.", len(docs), task.Concept),
		Concepts: concepts,
		Extra:    map[string]any{"sources": sources},
	}

	confidence := 0.85
	if len(docs) == 0 {
		confidence = 0.3
	}
	resp := core.NewAgentResponse(task.ID, ResearchName, payload, confidence)
	logCall(r.logger, ResearchName, task.ID, start, resp)
	return resp
}
