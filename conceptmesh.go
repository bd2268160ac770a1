// Package conceptmesh provides a high-level façade over the exploration
// pipeline: the orchestrator, the knowledge graph, the six capability agents
// and the resilience layer guarding every external call. Most applications
// interact with this package by:
//  1. Creating a ConceptMesh via New() (optionally overriding the default
//     in-memory collaborators)
//  2. Submitting explorations (Submit) and polling Status or blocking on Wait
//  3. Reading Results, searching the graph (Search) and recording Feedback
//
// All defaults are safe for local development and testing: a deterministic
// local embedder, a mock generator, an empty static search corpus and no
// persistence. Production deployments supply real LLM/search providers, a
// SQLite store and a structured logger.
package conceptmesh

import (
	"context"
	"time"

	"github.com/hupe1980/conceptmesh/agent"
	"github.com/hupe1980/conceptmesh/cache"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/embedding"
	"github.com/hupe1980/conceptmesh/feedback"
	"github.com/hupe1980/conceptmesh/graph"
	"github.com/hupe1980/conceptmesh/llm"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/metrics"
	"github.com/hupe1980/conceptmesh/orchestrator"
	"github.com/hupe1980/conceptmesh/resilience"
	"github.com/hupe1980/conceptmesh/search"
)

// Options configures the ConceptMesh instance.
type Options struct {
	// Embedder computes node vectors. Defaults to the deterministic local
	// encoder; production deployments plug an embedding provider adapter.
	Embedder core.Embedder
	// Generator backs the connection, content, visual, multimedia and
	// validation agents. Defaults to a MockGenerator.
	Generator core.Generator
	// Searcher backs the research agent. Defaults to an empty static corpus.
	Searcher core.Searcher
	// Cache memoizes embeddings. Defaults to an in-memory TTL cache; a cache
	// hit never touches the resilience layer.
	Cache core.Cache
	// Store, when set, durably records nodes, edges and explorations.
	Store core.Store
	// Metrics, when set, receives pipeline counters.
	Metrics *metrics.Metrics

	// RetryPolicy applies to every guarded collaborator call.
	RetryPolicy resilience.Policy
	// BreakerConfig applies per named operation.
	BreakerConfig resilience.BreakerConfig
	// AttemptTimeout bounds a single collaborator attempt.
	AttemptTimeout time.Duration
	// TaskTimeout bounds one task end to end, including retries.
	TaskTimeout time.Duration
	// ExplorationTimeout bounds a whole exploration; on expiry it completes
	// with partial results.
	ExplorationTimeout time.Duration
	// ExpansionLimit bounds how many discovered concepts fan out per depth
	// level during recursive expansion.
	ExpansionLimit int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ConceptMesh is the high-level façade aggregating the pipeline components.
type ConceptMesh struct {
	opts         Options
	graph        *graph.Engine
	orchestrator *orchestrator.Orchestrator
	feedback     *feedback.Recorder
	executor     *resilience.Executor
}

// New creates a ConceptMesh with optional overrides. Any unset collaborator
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *ConceptMesh {
	opts := Options{
		Generator:     llm.NewMockGenerator(),
		Searcher:      search.NewStaticSearcher(),
		Cache:         cache.NewInMemoryCache(),
		RetryPolicy:   resilience.DefaultPolicy(),
		BreakerConfig: resilience.DefaultBreakerConfig(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Embedder == nil {
		opts.Embedder = embedding.NewLocal()
	}

	breakerCfg := opts.BreakerConfig
	if breakerCfg.OnStateChange == nil {
		m := opts.Metrics
		breakerCfg.OnStateChange = func(operation, _, to string) { m.BreakerState(operation, to) }
	}

	executor := resilience.NewExecutor(func(o *resilience.Options) {
		o.Policy = opts.RetryPolicy
		o.Breaker = breakerCfg
		o.AttemptTimeout = opts.AttemptTimeout
		o.Logger = opts.Logger
	})

	// Cache wraps the guarded embedder so a hit short-circuits retry and
	// circuit breaking entirely.
	embedder := embedding.NewCached(embedding.NewResilient(opts.Embedder, executor), opts.Cache, 0).
		WithObserver(opts.Metrics)

	g := graph.NewEngine(func(o *graph.Options) {
		o.Embedder = embedder
		o.Store = opts.Store
		o.Logger = opts.Logger
	})

	agentOpts := func(o *agent.Options) {
		o.Executor = executor
		o.Logger = opts.Logger
	}
	caps := agent.NewSet(
		agent.NewResearch(opts.Searcher, agentOpts),
		agent.NewConnection(opts.Generator, agentOpts),
		agent.NewContent(opts.Generator, agentOpts),
		agent.NewVisual(opts.Generator, agentOpts),
		agent.NewMultimedia(opts.Generator, agentOpts),
		agent.NewValidation(opts.Generator, g, agentOpts),
	)

	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.Capabilities = caps
		o.Graph = g
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
		o.TaskTimeout = opts.TaskTimeout
		o.ExplorationTimeout = opts.ExplorationTimeout
		o.ExpansionLimit = opts.ExpansionLimit
	})

	return &ConceptMesh{
		opts:         opts,
		graph:        g,
		orchestrator: orch,
		feedback:     feedback.NewRecorder(),
		executor:     executor,
	}
}

// Load seeds the graph from the configured store. Call once before use when a
// store is wired.
func (m *ConceptMesh) Load(ctx context.Context) error { return m.graph.Load(ctx) }

// Submit validates and schedules an exploration, returning its id.
func (m *ConceptMesh) Submit(req core.ExplorationRequest) (string, error) {
	return m.orchestrator.Submit(req)
}

// Status returns the exploration record.
func (m *ConceptMesh) Status(id string) (*core.Exploration, error) {
	return m.orchestrator.Status(id)
}

// Pause gates the exploration before its next stage.
func (m *ConceptMesh) Pause(id string) error { return m.orchestrator.Pause(id) }

// Resume reopens a paused exploration.
func (m *ConceptMesh) Resume(id string) error { return m.orchestrator.Resume(id) }

// Results returns the fan-in of a completed exploration.
func (m *ConceptMesh) Results(id string) (*core.ExplorationResult, error) {
	return m.orchestrator.Results(id)
}

// Wait blocks until the exploration reaches a terminal state or ctx expires.
func (m *ConceptMesh) Wait(ctx context.Context, id string) error {
	return m.orchestrator.Wait(ctx, id)
}

// Search ranks stored concept nodes against a text query.
func (m *ConceptMesh) Search(ctx context.Context, query string, limit int, minScore float64) ([]core.ScoredNode, error) {
	return m.graph.FindSimilar(ctx, query, limit, minScore)
}

// Node returns one concept node by id.
func (m *ConceptMesh) Node(id string) (core.ConceptNode, error) { return m.graph.Node(id) }

// Subgraph returns the induced subgraph around a node.
func (m *ConceptMesh) Subgraph(centerID string, depth int) (core.Subgraph, error) {
	return m.graph.GetSubgraph(centerID, depth)
}

// Feedback records user feedback for an exploration.
func (m *ConceptMesh) Feedback(explorationID string, rating int, usefulConcepts, missingTopics []string) (feedback.Entry, error) {
	return m.feedback.Record(explorationID, rating, usefulConcepts, missingTopics)
}

// FeedbackSummary aggregates feedback recorded for an exploration.
func (m *ConceptMesh) FeedbackSummary(explorationID string) feedback.Summary {
	return m.feedback.Summarize(explorationID)
}

// Graph exposes the underlying knowledge graph engine.
func (m *ConceptMesh) Graph() *graph.Engine { return m.graph }

// BreakerState reports the circuit state for a named operation.
func (m *ConceptMesh) BreakerState(operation string) string {
	return m.executor.BreakerState(operation)
}
