package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "research.db", cfg.Archive.Path)
	assert.Equal(t, "research.vector.db", cfg.Vector.Path)
	assert.Equal(t, 1000, cfg.Vector.ChunkSize)
	assert.Equal(t, 200, cfg.Vector.ChunkOverlap)
	assert.Equal(t, "ollama", cfg.Vector.Provider)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 4, cfg.Retrieval.K)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
archive:
  path: data/research.db
vector:
  chunk_size: 500
  provider: openai
  openai:
    api_key: sk-test
retrieval:
  k: 6
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/research.db", cfg.Archive.Path)
	assert.Equal(t, "data/research.vector.db", cfg.Vector.Path, "vector path derives from archive path")
	assert.Equal(t, 500, cfg.Vector.ChunkSize)
	assert.Equal(t, 200, cfg.Vector.ChunkOverlap, "unset fields keep defaults")
	assert.Equal(t, "openai", cfg.Vector.Provider)
	assert.Equal(t, "sk-test", cfg.Vector.OpenAI.APIKey)
	assert.Equal(t, 6, cfg.Retrieval.K)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_WORKER_ENDPOINT", "https://worker.example/generate")
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vector:
  provider: openai
  openai:
    api_key: ${TEST_OPENAI_KEY}
generation:
  endpoint: ${TEST_WORKER_ENDPOINT}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://worker.example/generate", cfg.Generation.Endpoint)
	assert.Equal(t, "sk-from-env", cfg.Vector.OpenAI.APIKey)
}

func TestLoad_ExplicitZeroOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vector:
  chunk_size: 300
  chunk_overlap: 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Vector.ChunkOverlap, "an explicit zero is a setting, not a request for the default")
	assert.Equal(t, 300, cfg.Vector.ChunkSize)
}

func TestLoad_RejectsBadOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vector:
  chunk_size: 100
  chunk_overlap: 100
`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "chunk_overlap")
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vector:
  provider: quantum
`), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "provider")
}

func TestDeriveVectorDBPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"research.db", "research.vector.db"},
		{"/var/data/research.db", "/var/data/research.vector.db"},
		{"noext", "noext.vector.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveVectorDBPath(tt.in))
	}
}
