package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh/agent"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/graph"
	"github.com/hupe1980/conceptmesh/llm"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/search"
)

// newGenerator returns a mock with one well-formed completion per generative
// capability, matched on distinctive prompt fragments.
func newGenerator() *llm.MockGenerator {
	gen := llm.NewMockGenerator()
	gen.AddResponse("cross-domain",
		`[{"concept": "quantum entanglement", "content": "correlated qubit states", "relationship": "cross_domain", "weight": 0.9}]`)
	gen.AddResponse("concise explanation",
		"A clear explanation of the concept with one concrete example.")
	gen.AddResponse("concept map",
		`{"description": "Concept map", "mermaid": "graph TD; A-->B"}`)
	gen.AddResponse("explainer",
		`{"narration": "A short script.", "scenes": ["intro"]}`)
	gen.AddResponse("factual soundness",
		`{"verdict": "accurate", "quality": 0.9, "notes": "ok"}`)
	return gen
}

func newCorpus() *search.StaticSearcher {
	return search.NewStaticSearcher(
		core.Document{Title: "Qubit", URL: "https://example.com/qubit", Snippet: "quantum computing unit", Source: "encyclopedia"},
	)
}

func newTestOrchestrator(t *testing.T, optFns ...func(o *Options)) (*Orchestrator, *graph.Engine) {
	t.Helper()
	g := graph.NewEngine()
	gen := newGenerator()
	set := agent.NewSet(
		agent.NewResearch(newCorpus()),
		agent.NewConnection(gen),
		agent.NewContent(gen),
		agent.NewVisual(gen),
		agent.NewMultimedia(gen),
		agent.NewValidation(gen, g),
	)
	fns := append([]func(o *Options){func(o *Options) {
		o.Capabilities = set
		o.Graph = g
	}}, optFns...)
	return New(fns...), g
}

func waitDone(t *testing.T, o *Orchestrator, id string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, o.Wait(ctx, id))
}

func TestFinishEmitsAggregateRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevelInfo,
		Format:    "json",
		Output:    &buf,
		Component: "orchestrator",
	})
	o, _ := newTestOrchestrator(t, func(o *Options) { o.Logger = logger })

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	waitDone(t, o, id)

	out := buf.String()
	assert.True(t, strings.Contains(out, "Exploration completed"), "aggregate record missing: %s", out)
	assert.Contains(t, out, `"task_count":6`)
	assert.Contains(t, out, `"concept":"quantum computing"`)
}

func TestSubmit_Validates(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	_, err := o.Submit(core.ExplorationRequest{Concept: "   "})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "concept", ve.Field)
}

func TestSubmit_ReturnsImmediatelyInPendingOrExecuting(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	assert.Contains(t, []core.State{core.StatePending, core.StateExecuting, core.StateCompleted}, exp.State)
}

func TestStatus_UnknownID(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	_, err := o.Status("missing")
	var nf *core.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestExploration_EndToEnd(t *testing.T) {
	o, g := newTestOrchestrator(t)

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	waitDone(t, o, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, exp.State)
	require.NotNil(t, exp.CompletedAt)
	// Depth 1: exactly one task per capability.
	assert.Len(t, exp.TaskIDs, 6)
	for _, taskID := range exp.TaskIDs {
		task, err := o.Task(taskID)
		require.NoError(t, err)
		assert.True(t, task.Status.Terminal(), string(task.Status))
	}

	result, err := o.Results(id)
	require.NoError(t, err)
	assert.Empty(t, result.PartialReason)
	require.Len(t, result.Stages, 6)
	for i, stage := range core.StageOrder() {
		assert.Equal(t, stage, result.Stages[i].Stage)
	}
	assert.Len(t, result.Outcomes, 6)

	// The seed concept landed in the graph.
	node, ok := g.NodeByConcept("quantum computing")
	require.True(t, ok)
	assert.Equal(t, "quantum computing", node.Concept)

	// The connection agent's discovery is linked to the seed.
	neighbors, err := g.GetNeighbors(node.ID)
	require.NoError(t, err)
	concepts := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		concepts = append(concepts, n.Concept)
	}
	assert.Contains(t, concepts, "quantum entanglement")
}

func TestResults_BeforeTerminalFails(t *testing.T) {
	blocker := newBlockingSearcher()
	g := graph.NewEngine()
	gen := newGenerator()
	o := New(func(o *Options) {
		o.Graph = g
		o.Capabilities = agent.NewSet(
			agent.NewResearch(blocker),
			agent.NewConnection(gen), agent.NewContent(gen), agent.NewVisual(gen),
			agent.NewMultimedia(gen), agent.NewValidation(gen, g),
		)
	})

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	blocker.awaitCall(t)

	_, err = o.Results(id)
	var ise *core.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "results", ise.Op)
	assert.Equal(t, core.StateExecuting, ise.Current)

	blocker.release()
	waitDone(t, o, id)
	_, err = o.Results(id)
	assert.NoError(t, err)
}

func TestPauseResume(t *testing.T) {
	blocker := newBlockingSearcher()
	g := graph.NewEngine()
	gen := newGenerator()
	o := New(func(o *Options) {
		o.Graph = g
		o.Capabilities = agent.NewSet(
			agent.NewResearch(blocker),
			agent.NewConnection(gen), agent.NewContent(gen), agent.NewVisual(gen),
			agent.NewMultimedia(gen), agent.NewValidation(gen, g),
		)
	})

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	blocker.awaitCall(t)

	// The exploration is mid-research; pause gates the next stage.
	require.NoError(t, o.Pause(id))
	exp, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, core.StatePaused, exp.State)

	// Pausing a paused exploration is an illegal transition.
	err = o.Pause(id)
	var ise *core.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "pause", ise.Op)
	assert.Equal(t, core.StatePaused, ise.Current)

	// The in-flight research task runs to completion, but the pipeline must
	// not advance past the stage gate.
	blocker.release()
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	assert.Error(t, o.Wait(ctx, id))

	require.NoError(t, o.Resume(id))
	waitDone(t, o, id)

	exp, err = o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, exp.State)
}

func TestResume_OnlyFromPaused(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	waitDone(t, o, id)

	err = o.Resume(id)
	var ise *core.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "resume", ise.Op)
	assert.Equal(t, core.StateCompleted, ise.Current)
}

func TestFailedAgentDegradesNotFails(t *testing.T) {
	g := graph.NewEngine()
	gen := llm.NewMockGenerator()
	gen.Fail(errors.New("provider down")) // every generative capability fails
	o := New(func(o *Options) {
		o.Graph = g
		o.Capabilities = agent.NewSet(
			agent.NewResearch(newCorpus()),
			agent.NewConnection(gen), agent.NewContent(gen), agent.NewVisual(gen),
			agent.NewMultimedia(gen), agent.NewValidation(gen, g),
		)
	})

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	waitDone(t, o, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, exp.State)

	result, err := o.Results(id)
	require.NoError(t, err)

	failed := 0
	for _, oc := range result.Outcomes {
		if oc.Status == core.TaskFailed {
			failed++
			assert.Equal(t, core.ErrorKindProvider, oc.Error)
		}
	}
	assert.Equal(t, 5, failed) // research succeeded, the five generative stages failed

	// Research's findings still made it into the graph.
	_, ok := g.NodeByConcept("quantum computing")
	assert.True(t, ok)
}

func TestRecursiveExpansion(t *testing.T) {
	o, g := newTestOrchestrator(t)

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 2})
	require.NoError(t, err)
	waitDone(t, o, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	// Depth 2 re-applies the six-stage fan-out to discovered concepts.
	assert.Greater(t, len(exp.TaskIDs), 6)

	// The discovered concept was itself explored and has its own node.
	_, ok := g.NodeByConcept("quantum entanglement")
	assert.True(t, ok)
}

func TestRecursiveExpansion_VisitedSetPreventsRevisit(t *testing.T) {
	g := graph.NewEngine()
	gen := llm.NewMockGenerator()
	// Every connection round rediscovers the seed itself.
	gen.AddResponse("cross-domain",
		`[{"concept": "quantum computing", "content": "", "relationship": "cross_domain", "weight": 0.9}]`)
	o := New(func(o *Options) {
		o.Graph = g
		o.Capabilities = agent.NewSet(
			agent.NewResearch(search.NewStaticSearcher()),
			agent.NewConnection(gen), agent.NewContent(gen), agent.NewVisual(gen),
			agent.NewMultimedia(gen), agent.NewValidation(gen, g),
		)
	})

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 3})
	require.NoError(t, err)
	waitDone(t, o, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	// The only discovery is the already-visited seed, so no second level runs.
	assert.Len(t, exp.TaskIDs, 6)
}

func TestExplorationTimeout_CompletesPartial(t *testing.T) {
	blocker := newBlockingSearcher()
	g := graph.NewEngine()
	gen := newGenerator()
	o := New(func(o *Options) {
		o.Graph = g
		o.ExplorationTimeout = 100 * time.Millisecond
		o.TaskTimeout = 50 * time.Millisecond
		o.Capabilities = agent.NewSet(
			agent.NewResearch(blocker),
			agent.NewConnection(gen), agent.NewContent(gen), agent.NewVisual(gen),
			agent.NewMultimedia(gen), agent.NewValidation(gen, g),
		)
	})

	id, err := o.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)
	t.Cleanup(blocker.release)
	waitDone(t, o, id)

	exp, err := o.Status(id)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, exp.State)

	result, err := o.Results(id)
	require.NoError(t, err)
	// The blocked research task timed out; the exploration degraded instead
	// of failing.
	assert.Equal(t, core.TaskFailed, result.Outcomes[0].Status)
}

// blockingSearcher blocks Search until released, signalling the first call.
type blockingSearcher struct {
	called    chan struct{}
	releaseCh chan struct{}
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{called: make(chan struct{}, 1), releaseCh: make(chan struct{})}
}

func (b *blockingSearcher) awaitCall(t *testing.T) {
	t.Helper()
	select {
	case <-b.called:
	case <-time.After(2 * time.Second):
		t.Fatal("searcher was never called")
	}
}

func (b *blockingSearcher) release() {
	select {
	case <-b.releaseCh:
	default:
		close(b.releaseCh)
	}
}

func (b *blockingSearcher) Search(ctx context.Context, _ string, _ int) ([]core.Document, error) {
	select {
	case b.called <- struct{}{}:
	default:
	}
	select {
	case <-b.releaseCh:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
