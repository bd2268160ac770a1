package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/conceptmesh/core"
)

type expandRequest struct {
	Concept  string `json:"concept" validate:"required"`
	Context  string `json:"context,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty" validate:"omitempty,gte=1,lte=10"`
}

type expandResponse struct {
	ExplorationID string `json:"exploration_id"`
}

type searchRequest struct {
	Query    string  `json:"query" validate:"required"`
	Limit    int     `json:"limit,omitempty" validate:"omitempty,gte=1,lte=100"`
	MinScore float64 `json:"min_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type feedbackRequest struct {
	ExplorationID  string   `json:"exploration_id" validate:"required"`
	Rating         int      `json:"rating" validate:"required,gte=1,lte=5"`
	UsefulConcepts []string `json:"useful_concepts,omitempty"`
	MissingTopics  []string `json:"missing_topics,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.mesh.Submit(core.ExplorationRequest{
		Concept:  req.Concept,
		Context:  req.Context,
		MaxDepth: req.MaxDepth,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, expandResponse{ExplorationID: id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	exp, err := s.mesh.Status(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	result, err := s.mesh.Results(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.mesh.Pause(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(core.StatePaused)})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.mesh.Resume(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(core.StateExecuting)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	scored, err := s.mesh.Search(r.Context(), req.Query, req.Limit, req.MinScore)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": scored})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.mesh.Node(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	depth := 1
	if d := r.URL.Query().Get("depth"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 0 || parsed > 10 {
			s.writeError(w, &core.ValidationError{Field: "depth", Message: "must be an integer between 0 and 10"})
			return
		}
		depth = parsed
	}

	sub, err := s.mesh.Subgraph(chi.URLParam(r, "id"), depth)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	entry, err := s.mesh.Feedback(req.ExplorationID, req.Rating, req.UsefulConcepts, req.MissingTopics)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// decode unmarshals and validates the request body, writing the error
// response itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		stateErr      *core.InvalidStateError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
