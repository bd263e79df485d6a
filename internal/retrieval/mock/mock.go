// Package mock provides a deterministic embedder for tests: no network, no
// model, same vector for the same text every time.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

const dimensions = 384

// Embedder generates hash-seeded pseudo-random unit vectors.
type Embedder struct{}

// New creates a mock embedder.
func New() *Embedder { return &Embedder{} }

// Embed creates a deterministic embedding from the text hash.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, dimensions)
	for i := range vec {
		// Linear congruential step per dimension.
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	n := float32(math.Sqrt(sum))
	for i, v := range vec {
		vec[i] = v / n
	}
	return vec
}
