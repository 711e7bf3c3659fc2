// Package embed provides sentence-embedding models behind a single contract.
// Encoding is context-independent per text: batching never changes a vector.
package embed

import (
	"context"
	"math"
)

// Embedder encodes texts into fixed-dimension vectors, one per input, in
// input order. Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
