// Package vector provides the embedding and similarity-search layer:
// an Embedder abstraction over external embedding backends and a Store
// that persists (vector, text, provenance) triples and answers
// nearest-neighbor queries.
package vector

import (
	"context"
	"math"
)

// Metadata is the provenance attached to every indexed chunk.
type Metadata struct {
	URL        string
	ChunkIndex int
}

// Result is a retrieved chunk with its similarity score. Higher scores
// are more similar.
type Result struct {
	ID         string
	Score      float32
	Content    string
	URL        string
	ChunkIndex int
}

// Store persists embedded texts and answers similarity queries.
type Store interface {
	// AddTexts embeds and stores texts with 1:1 positionally
	// corresponding metadata.
	AddTexts(ctx context.Context, texts []string, metas []Metadata) error

	// SimilaritySearch returns up to k stored chunks ordered by
	// descending similarity to the query. An empty store yields an
	// empty result, not an error.
	SimilaritySearch(ctx context.Context, query string, k int) ([]Result, error)

	Close() error
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float32) float32 {
	return float32(math.Sqrt(float64(dotProduct(v, v))))
}

// cosineSimilarity returns 1 for identical directions, 0 for
// perpendicular or zero vectors, -1 for opposite.
func cosineSimilarity(a, b []float32) float32 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dotProduct(a, b) / (na * nb)
}
