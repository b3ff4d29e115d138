package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlresearch/internal/vector"
)

// stubStore returns canned results, recording the requested k.
type stubStore struct {
	results []vector.Result
	err     error
	gotK    int
}

func (s *stubStore) AddTexts(context.Context, []string, []vector.Metadata) error { return nil }

func (s *stubStore) SimilaritySearch(_ context.Context, _ string, k int) ([]vector.Result, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) > k {
		return s.results[:k], nil
	}
	return s.results, nil
}

func (s *stubStore) Close() error { return nil }

func TestRetrieve_RankedResults(t *testing.T) {
	store := &stubStore{results: []vector.Result{
		{Content: "best match", URL: "https://a.example", Score: 0.9},
		{Content: "good match", URL: "https://b.example", Score: 0.7},
		{Content: "weak match", URL: "https://a.example", Score: 0.2},
	}}

	r := New(store, 3)
	results, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "best match", results[0].Content)
	assert.Equal(t, 3, store.gotK)
}

func TestRetrieve_DefaultK(t *testing.T) {
	store := &stubStore{}
	r := New(store, 0)

	_, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, DefaultK, store.gotK)
}

func TestRetrieve_EmptyStore(t *testing.T) {
	r := New(&stubStore{}, 5)

	results, err := r.Retrieve(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_PropagatesStoreError(t *testing.T) {
	r := New(&stubStore{err: errors.New("backend down")}, 5)

	_, err := r.Retrieve(context.Background(), "query")
	assert.ErrorContains(t, err, "backend down")
}
