// Package retrieve wraps the vector store's similarity search behind a
// query-string-in, ranked-chunks-out contract.
package retrieve

import (
	"context"
	"fmt"

	"urlresearch/internal/vector"
)

// DefaultK is the number of chunks retrieved per question. The backing
// store has no inherent default, so retrieval fixes one here.
const DefaultK = 4

// Retriever answers "given a query, return the top-K relevant chunks".
type Retriever struct {
	store vector.Store
	k     int
}

// New creates a Retriever. k <= 0 selects DefaultK.
func New(store vector.Store, k int) *Retriever {
	if k <= 0 {
		k = DefaultK
	}
	return &Retriever{store: store, k: k}
}

// Retrieve returns up to K chunks ordered by descending similarity.
// An empty store yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]vector.Result, error) {
	results, err := r.store.SimilaritySearch(ctx, query, r.k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return results, nil
}
