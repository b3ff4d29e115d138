package answer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urlresearch/internal/vector"
)

func sampleResults() []vector.Result {
	return []vector.Result{
		{Content: "Paris is the capital of France.", URL: "https://wiki.example/france", ChunkIndex: 0},
		{Content: "France is in western Europe.", URL: "https://geo.example/europe", ChunkIndex: 2},
		{Content: "The capital hosts the government.", URL: "https://wiki.example/france", ChunkIndex: 1},
	}
}

func TestBuildPrompt_Structure(t *testing.T) {
	prompt := BuildPrompt("What is the capital of France?", sampleResults())

	assert.Contains(t, prompt, "CONTEXT:")
	assert.Contains(t, prompt, "QUESTION:")
	assert.Contains(t, prompt, "What is the capital of France?")
	assert.Contains(t, prompt, RefusalSentence)

	// The four required answer sections.
	assert.Contains(t, prompt, "**Short Answer**")
	assert.Contains(t, prompt, "**Key Points**")
	assert.Contains(t, prompt, "**Evidence from Sources**")
	assert.Contains(t, prompt, "**Limitations**")

	// Chunks appear in retrieval order.
	first := strings.Index(prompt, sampleResults()[0].Content)
	second := strings.Index(prompt, sampleResults()[1].Content)
	require.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, second)
}

func TestSources_DedupesFirstSeen(t *testing.T) {
	sources := Sources(sampleResults())
	assert.Equal(t, []string{"https://wiki.example/france", "https://geo.example/europe"}, sources)
}

func TestGenerator_Answer(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		gotPrompt = req["prompt"]

		w.Write([]byte(`[{"response": {"response": "Paris is the capital."}}]`))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, srv.Client())
	res, err := g.Answer(context.Background(), "What is the capital of France?", sampleResults())
	require.NoError(t, err)

	assert.Equal(t, "Paris is the capital.", res.Answer)
	assert.Equal(t, []string{"https://wiki.example/france", "https://geo.example/europe"}, res.Sources)
	assert.Contains(t, gotPrompt, "What is the capital of France?")
}

func TestGenerator_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, srv.Client())
	_, err := g.Answer(context.Background(), "q", sampleResults())
	require.Error(t, err)

	var be *BackendError
	require.ErrorAs(t, err, &be, "a 500 must surface as BackendError, not a parse error")
	assert.Equal(t, http.StatusInternalServerError, be.Status)

	var fe *ResponseFormatError
	assert.False(t, errors.As(err, &fe), "must not be misreported as a format error")
}

func TestGenerator_ResponseFormatError(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway timeout</html>"},
		{"empty array", "[]"},
		{"missing nested field", `[{"response": {}}]`},
		{"wrong nesting", `[{"answer": "text"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			g := NewGenerator(srv.URL, srv.Client())
			_, err := g.Answer(context.Background(), "q", sampleResults())
			require.Error(t, err)

			var fe *ResponseFormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestGenerator_EmptyContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"response": {"response": "` + RefusalSentence + `"}}]`))
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, srv.Client())
	res, err := g.Answer(context.Background(), "anything", nil)
	require.NoError(t, err)

	assert.Equal(t, RefusalSentence, res.Answer)
	assert.Empty(t, res.Sources)
}
