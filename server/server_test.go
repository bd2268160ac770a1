package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/llm"
	"github.com/hupe1980/conceptmesh/search"
)

func newTestServer(t *testing.T) (*Server, *conceptmesh.ConceptMesh) {
	t.Helper()
	gen := llm.NewMockGenerator()
	gen.AddResponse("cross-domain",
		`[{"concept": "entanglement", "content": "", "relationship": "cross_domain", "weight": 0.9}]`)
	mesh := conceptmesh.New(func(o *conceptmesh.Options) {
		o.Generator = gen
		o.Searcher = search.NewStaticSearcher(
			core.Document{Title: "Qubit", Snippet: "quantum computing unit", Source: "encyclopedia"},
		)
	})
	return New(mesh), mesh
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpandAndStatus(t *testing.T) {
	s, mesh := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/concepts/expand",
		map[string]any{"concept": "quantum computing", "max_depth": 1})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		ExplorationID string `json:"exploration_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ExplorationID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, mesh.Wait(ctx, resp.ExplorationID))

	rec = doJSON(t, s.Handler(), http.MethodGet, "/concepts/"+resp.ExplorationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var exp core.Exploration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exp))
	assert.Equal(t, core.StateCompleted, exp.State)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/concepts/"+resp.ExplorationID+"/results", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpand_ValidationFails(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodPost, "/concepts/expand", map[string]any{"context": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatus_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Handler(), http.MethodGet, "/concepts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResults_Conflict(t *testing.T) {
	s, mesh := newTestServer(t)
	// Submit directly so we can query before completion; the exploration may
	// already be done by the time the request lands, so accept either code.
	id, err := mesh.Submit(core.ExplorationRequest{Concept: "slow concept", MaxDepth: 1})
	require.NoError(t, err)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/concepts/"+id+"/results", nil)
	assert.Contains(t, []int{http.StatusOK, http.StatusConflict}, rec.Code)
}

func TestPause_InvalidState(t *testing.T) {
	s, mesh := newTestServer(t)
	id, err := mesh.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, mesh.Wait(ctx, id))

	rec := doJSON(t, s.Handler(), http.MethodPost, "/concepts/"+id+"/pause", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSearchAndNode(t *testing.T) {
	s, mesh := newTestServer(t)
	id, err := mesh.Submit(core.ExplorationRequest{Concept: "quantum computing", MaxDepth: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, mesh.Wait(ctx, id))

	rec := doJSON(t, s.Handler(), http.MethodPost, "/search",
		map[string]any{"query": "quantum computing", "limit": 5, "min_score": 0.5})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []core.ScoredNode `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Results)

	nodeID := resp.Results[0].Node.ID
	rec = doJSON(t, s.Handler(), http.MethodGet, "/nodes/"+nodeID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/nodes/"+nodeID+"/subgraph?depth=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodGet, "/nodes/"+nodeID+"/subgraph?depth=99", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedback(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/feedback",
		map[string]any{"exploration_id": "exp-1", "rating": 4, "useful_concepts": []string{"qubits"}})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/feedback",
		map[string]any{"exploration_id": "exp-1", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
