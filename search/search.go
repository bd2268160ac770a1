// Package search provides implementations of the core.Searcher port used by
// the research capability. StaticSearcher serves a canned document corpus for
// tests, examples and offline development; production deployments plug a real
// web or academic search provider behind the same interface.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
)

// StaticSearcher is an in-memory core.Searcher matching documents by token
// overlap between the query and the document title/snippet. Results are
// ranked by overlap then title for a deterministic order.
type StaticSearcher struct {
	mu   sync.RWMutex
	docs []core.Document
	err  error
}

// NewStaticSearcher constructs a searcher over the given corpus.
func NewStaticSearcher(docs ...core.Document) *StaticSearcher {
	return &StaticSearcher{docs: docs}
}

// Add appends documents to the corpus.
func (s *StaticSearcher) Add(docs ...core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
}

// Fail makes every subsequent Search call return err (nil restores normal
// operation).
func (s *StaticSearcher) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Search implements core.Searcher.
func (s *StaticSearcher) Search(ctx context.Context, query string, maxResults int) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	queryTokens := tokenize(query)

	type scored struct {
		doc   core.Document
		score int
	}
	var hits []scored
	for _, d := range s.docs {
		overlap := overlapCount(queryTokens, tokenize(d.Title+" "+d.Snippet))
		if overlap > 0 {
			hits = append(hits, scored{doc: d, score: overlap})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.Title < hits[j].doc.Title
	})

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	docs := make([]core.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.doc
	}
	return docs, nil
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(text)) {
		tokens[strings.Trim(f, ".,;:!?\"'()")] = struct{}{}
	}
	return tokens
}

func overlapCount(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
