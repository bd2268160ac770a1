// Package sqlite provides the optional SQLite-backed core.Store. Persistence
// is additive: the in-memory graph behaves identically with or without it,
// and a wired store only seeds the graph at startup and receives best-effort
// write-through afterwards.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/conceptmesh/core"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS concept_nodes (
	id            TEXT PRIMARY KEY,
	concept       TEXT NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	embedding     TEXT NOT NULL DEFAULT '',
	quality_score REAL NOT NULL DEFAULT 0.0,
	lexical_only  INTEGER NOT NULL DEFAULT 0,
	source_agent  TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_nodes_concept ON concept_nodes(concept);

CREATE TABLE IF NOT EXISTS graph_edges (
	id                TEXT PRIMARY KEY,
	source_id         TEXT NOT NULL,
	target_id         TEXT NOT NULL,
	relationship_type TEXT NOT NULL,
	weight            REAL NOT NULL DEFAULT 0.0,
	created_at        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON graph_edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON graph_edges(target_id);

CREATE TABLE IF NOT EXISTS explorations (
	id             TEXT PRIMARY KEY,
	concept        TEXT NOT NULL,
	context        TEXT NOT NULL DEFAULT '',
	max_depth      INTEGER NOT NULL DEFAULT 1,
	state          TEXT NOT NULL,
	result_summary TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL DEFAULT 0,
	completed_at   INTEGER NOT NULL DEFAULT 0
);
`

// Store implements core.Store on a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies pragmas and runs the
// schema migration.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads but a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schemaV1); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveNode upserts a concept node.
func (s *Store) SaveNode(ctx context.Context, node core.ConceptNode) error {
	embedding := ""
	if node.Embedding != nil {
		raw, err := json.Marshal(node.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = string(raw)
	}

	const q = `INSERT INTO concept_nodes (id, concept, content, embedding, quality_score, lexical_only, source_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	concept = excluded.concept,
	content = excluded.content,
	embedding = excluded.embedding,
	quality_score = excluded.quality_score,
	lexical_only = excluded.lexical_only,
	source_agent = excluded.source_agent`

	_, err := s.db.ExecContext(ctx, q,
		node.ID, node.Concept, node.Content, embedding,
		node.QualityScore, boolToInt(node.LexicalOnly), node.SourceAgent, node.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save node: %w", err)
	}
	return nil
}

// SaveEdge upserts a graph edge.
func (s *Store) SaveEdge(ctx context.Context, edge core.GraphEdge) error {
	const q = `INSERT INTO graph_edges (id, source_id, target_id, relationship_type, weight, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	relationship_type = excluded.relationship_type,
	weight = excluded.weight`

	_, err := s.db.ExecContext(ctx, q,
		edge.ID, edge.SourceID, edge.TargetID, edge.RelationshipType, edge.Weight, edge.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save edge: %w", err)
	}
	return nil
}

// SaveExploration upserts a finished exploration record.
func (s *Store) SaveExploration(ctx context.Context, exploration core.Exploration) error {
	completedAt := int64(0)
	if exploration.CompletedAt != nil {
		completedAt = exploration.CompletedAt.Unix()
	}

	const q = `INSERT INTO explorations (id, concept, context, max_depth, state, result_summary, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	state = excluded.state,
	result_summary = excluded.result_summary,
	completed_at = excluded.completed_at`

	_, err := s.db.ExecContext(ctx, q,
		exploration.ID, exploration.Concept, exploration.Context, exploration.MaxDepth,
		string(exploration.State), exploration.ResultSummary, exploration.CreatedAt.Unix(), completedAt,
	)
	if err != nil {
		return fmt.Errorf("save exploration: %w", err)
	}
	return nil
}

// LoadNodes returns every stored concept node.
func (s *Store) LoadNodes(ctx context.Context) ([]core.ConceptNode, error) {
	const q = `SELECT id, concept, content, embedding, quality_score, lexical_only, source_agent, created_at
FROM concept_nodes
ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []core.ConceptNode
	for rows.Next() {
		var (
			n         core.ConceptNode
			embedding string
			lexical   int
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.Concept, &n.Content, &embedding, &n.QualityScore, &lexical, &n.SourceAgent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if embedding != "" {
			if err := json.Unmarshal([]byte(embedding), &n.Embedding); err != nil {
				return nil, fmt.Errorf("unmarshal embedding for node %s: %w", n.ID, err)
			}
		}
		n.LexicalOnly = lexical != 0
		n.CreatedAt = time.Unix(createdAt, 0).UTC()
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// LoadEdges returns every stored edge.
func (s *Store) LoadEdges(ctx context.Context) ([]core.GraphEdge, error) {
	const q = `SELECT id, source_id, target_id, relationship_type, weight, created_at
FROM graph_edges
ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer rows.Close()

	var edges []core.GraphEdge
	for rows.Next() {
		var (
			e         core.GraphEdge
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &e.RelationshipType, &e.Weight, &createdAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
