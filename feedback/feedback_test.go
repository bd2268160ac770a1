package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh/core"
)

func TestRecorder_Record(t *testing.T) {
	r := NewRecorder()

	entry, err := r.Record("exp-1", 4, []string{"qubits"}, []string{"error correction"})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 4, entry.Rating)

	entries := r.Entries("exp-1")
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"qubits"}, entries[0].UsefulConcepts)
}

func TestRecorder_Validation(t *testing.T) {
	r := NewRecorder()

	var ve *core.ValidationError
	_, err := r.Record("", 3, nil, nil)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "exploration_id", ve.Field)

	_, err = r.Record("exp-1", 0, nil, nil)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rating", ve.Field)

	_, err = r.Record("exp-1", 6, nil, nil)
	assert.ErrorAs(t, err, &ve)
}

func TestRecorder_Summarize(t *testing.T) {
	r := NewRecorder()
	_, err := r.Record("exp-1", 5, []string{"qubits", "entanglement"}, nil)
	require.NoError(t, err)
	_, err = r.Record("exp-1", 3, []string{"qubits"}, []string{"decoherence"})
	require.NoError(t, err)

	summary := r.Summarize("exp-1")
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 4.0, summary.AverageRating, 1e-9)
	assert.Equal(t, []string{"qubits", "entanglement"}, summary.UsefulConcepts)
	assert.Equal(t, []string{"decoherence"}, summary.MissingTopics)
}

func TestRecorder_SummarizeEmpty(t *testing.T) {
	r := NewRecorder()
	summary := r.Summarize("unknown")
	assert.Equal(t, 0, summary.Count)
	assert.Zero(t, summary.AverageRating)
}
