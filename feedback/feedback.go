// Package feedback records user feedback on completed explorations: a rating
// plus which concepts were useful and which topics were missed. Records are
// retained for future tuning only; nothing here feeds back into the
// exploration pipeline.
package feedback

import (
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// Entry is one recorded piece of feedback.
type Entry struct {
	ID             string    `json:"id"`
	ExplorationID  string    `json:"exploration_id"`
	Rating         int       `json:"rating"`
	UsefulConcepts []string  `json:"useful_concepts,omitempty"`
	MissingTopics  []string  `json:"missing_topics,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary aggregates all feedback recorded for one exploration.
type Summary struct {
	ExplorationID  string   `json:"exploration_id"`
	Count          int      `json:"count"`
	AverageRating  float64  `json:"average_rating"`
	UsefulConcepts []string `json:"useful_concepts,omitempty"`
	MissingTopics  []string `json:"missing_topics,omitempty"`
}

// Recorder is an in-memory feedback store, safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	entries map[string][]Entry // exploration id -> entries
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{entries: make(map[string][]Entry)}
}

// Record validates and stores one feedback entry. Rating must be in [1,5].
func (r *Recorder) Record(explorationID string, rating int, usefulConcepts, missingTopics []string) (Entry, error) {
	if strings.TrimSpace(explorationID) == "" {
		return Entry{}, &core.ValidationError{Field: "exploration_id", Message: "must be non-empty"}
	}
	if rating < 1 || rating > 5 {
		return Entry{}, &core.ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}

	entry := Entry{
		ID:             core.NewID(),
		ExplorationID:  explorationID,
		Rating:         rating,
		UsefulConcepts: append([]string(nil), usefulConcepts...),
		MissingTopics:  append([]string(nil), missingTopics...),
		CreatedAt:      time.Now().UTC(),
	}

	r.mu.Lock()
	r.entries[explorationID] = append(r.entries[explorationID], entry)
	r.mu.Unlock()
	return entry, nil
}

// Entries returns a copy of all feedback recorded for the exploration.
func (r *Recorder) Entries(explorationID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries[explorationID]...)
}

// Summarize aggregates feedback for one exploration. A zero Count means none
// was recorded.
func (r *Recorder) Summarize(explorationID string) Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[explorationID]
	summary := Summary{ExplorationID: explorationID, Count: len(entries)}
	if len(entries) == 0 {
		return summary
	}

	total := 0
	useful := make(map[string]struct{})
	missing := make(map[string]struct{})
	for _, e := range entries {
		total += e.Rating
		for _, c := range e.UsefulConcepts {
			if _, seen := useful[c]; !seen {
				useful[c] = struct{}{}
				summary.UsefulConcepts = append(summary.UsefulConcepts, c)
			}
		}
		for _, topic := range e.MissingTopics {
			if _, seen := missing[topic]; !seen {
				missing[topic] = struct{}{}
				summary.MissingTopics = append(summary.MissingTopics, topic)
			}
		}
	}
	summary.AverageRating = float64(total) / float64(len(entries))
	return summary
}
