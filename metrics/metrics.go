// Package metrics exposes Prometheus collectors for the exploration pipeline.
// All recording methods are nil-safe so instrumentation stays optional: a nil
// *Metrics silently drops every observation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline's Prometheus collectors.
type Metrics struct {
	explorationsStarted   prometheus.Counter
	explorationsCompleted prometheus.Counter
	tasksCompleted        *prometheus.CounterVec
	taskFailures          *prometheus.CounterVec
	breakerState          *prometheus.GaugeVec
	cacheHits             prometheus.Counter
	cacheMisses           prometheus.Counter
	graphNodes            prometheus.Gauge
	graphEdges            prometheus.Gauge
}

// New registers the pipeline collectors with reg and returns the handle used
// by the orchestrator and decorators.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		explorationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conceptmesh_explorations_started_total",
			Help: "Explorations accepted by the orchestrator.",
		}),
		explorationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conceptmesh_explorations_completed_total",
			Help: "Explorations that reached a terminal state.",
		}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "conceptmesh_tasks_completed_total",
			Help: "Tasks that reached a terminal status, by type and status.",
		}, []string{"task_type", "status"}),
		taskFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "conceptmesh_task_failures_total",
			Help: "Failed tasks by type and contained error kind.",
		}, []string{"task_type", "error_kind"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "conceptmesh_breaker_state",
			Help: "Circuit state per operation: 0 closed, 1 half-open, 2 open.",
		}, []string{"operation"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conceptmesh_cache_hits_total",
			Help: "Cache hits across embedding and agent memoization.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conceptmesh_cache_misses_total",
			Help: "Cache misses across embedding and agent memoization.",
		}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conceptmesh_graph_nodes",
			Help: "Concept nodes currently stored in the graph.",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conceptmesh_graph_edges",
			Help: "Edges currently stored in the graph.",
		}),
	}

	reg.MustRegister(
		m.explorationsStarted,
		m.explorationsCompleted,
		m.tasksCompleted,
		m.taskFailures,
		m.breakerState,
		m.cacheHits,
		m.cacheMisses,
		m.graphNodes,
		m.graphEdges,
	)
	return m
}

// ExplorationStarted records an accepted exploration.
func (m *Metrics) ExplorationStarted() {
	if m == nil {
		return
	}
	m.explorationsStarted.Inc()
}

// ExplorationCompleted records a terminal exploration.
func (m *Metrics) ExplorationCompleted() {
	if m == nil {
		return
	}
	m.explorationsCompleted.Inc()
}

// TaskCompleted records a terminal task.
func (m *Metrics) TaskCompleted(taskType, status string) {
	if m == nil {
		return
	}
	m.tasksCompleted.WithLabelValues(taskType, status).Inc()
}

// TaskFailed records a failed task and its contained error kind.
func (m *Metrics) TaskFailed(taskType, errorKind string) {
	if m == nil {
		return
	}
	m.taskFailures.WithLabelValues(taskType, errorKind).Inc()
}

// BreakerState records the circuit state for an operation.
func (m *Metrics) BreakerState(operation, state string) {
	if m == nil {
		return
	}
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.breakerState.WithLabelValues(operation).Set(v)
}

// CacheHit records a memoization hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records a memoization miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// GraphSize records the current node and edge counts.
func (m *Metrics) GraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
}
