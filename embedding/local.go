package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// LocalDimensions is the vector length produced by the Local encoder.
const LocalDimensions = 16

// Local is a deterministic, dependency-free core.Embedder producing a
// fixed-length vector derived from a content hash. Identical (normalized)
// input always yields the identical vector, which keeps similarity ranking
// stable in tests and offline development. It carries no semantic signal and
// is not a substitute for a real embedding model.
type Local struct{}

// NewLocal constructs a Local encoder.
func NewLocal() *Local { return &Local{} }

// Encode implements core.Embedder. It never fails.
func (l *Local) Encode(_ context.Context, text string) ([]float64, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(text)))

	vec := make([]float64, LocalDimensions)
	for i := 0; i < LocalDimensions; i++ {
		// Two bytes per dimension, scaled into [0, 1).
		u := binary.BigEndian.Uint16(sum[i*2 : i*2+2])
		vec[i] = float64(u%10000) / 10000.0
	}
	return vec, nil
}
