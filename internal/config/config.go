// Package config resolves the tool's configuration once at startup from
// a YAML file plus environment expansion. The pipeline takes the
// resulting struct as a constructor argument and never re-reads ambient
// configuration mid-operation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Archive    ArchiveConfig    `yaml:"archive"`
	Vector     VectorConfig     `yaml:"vector"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
}

// ArchiveConfig locates the relational page archive.
type ArchiveConfig struct {
	Path string `yaml:"path"` // default "research.db"
}

// VectorConfig configures the vector store and embedding provider.
type VectorConfig struct {
	Path         string            `yaml:"path"`          // derived from archive path if empty
	ChunkSize    int               `yaml:"chunk_size"`    // default 1000
	ChunkOverlap int               `yaml:"chunk_overlap"` // default 200
	Provider     string            `yaml:"provider"`      // "ollama" (default) or "openai"
	OpenAI       OpenAIEmbedConfig `yaml:"openai"`
	Ollama       OllamaEmbedConfig `yaml:"ollama"`
}

// OpenAIEmbedConfig configures the OpenAI-compatible embedding provider.
type OpenAIEmbedConfig struct {
	APIKey     string `yaml:"api_key"`  // supports ${ENV_VAR} expansion
	Model      string `yaml:"model"`    // default "text-embedding-3-small"
	BaseURL    string `yaml:"base_url"` // default official API
	Dimensions int    `yaml:"dimensions"`
}

// OllamaEmbedConfig configures the local Ollama embedding provider.
type OllamaEmbedConfig struct {
	Host       string `yaml:"host"`  // default http://localhost:11434
	Model      string `yaml:"model"` // default "nomic-embed-text"
	Dimensions int    `yaml:"dimensions"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs"` // default 20
	UserAgent   string `yaml:"user_agent"`
}

// RetrievalConfig configures query-time retrieval.
type RetrievalConfig struct {
	K int `yaml:"k"` // default 4
}

// GenerationConfig locates the text generation backend.
type GenerationConfig struct {
	Endpoint    string `yaml:"endpoint"`     // supports ${ENV_VAR} expansion
	TimeoutSecs int    `yaml:"timeout_secs"` // default 60
}

// Load reads config from path. The file is unmarshalled over the
// defaults, so absent fields keep their default while explicit values,
// including explicit zeros, are honored. A missing file returns the
// defaults so the tool works out of the box against a local Ollama
// server.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.derivePaths()
			cfg.expandEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.derivePaths()
	cfg.expandEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Archive: ArchiveConfig{Path: "research.db"},
		Vector: VectorConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Provider:     "ollama",
		},
		Fetch:      FetchConfig{TimeoutSecs: 20},
		Retrieval:  RetrievalConfig{K: 4},
		Generation: GenerationConfig{Endpoint: "${WORKER_ENDPOINT}", TimeoutSecs: 60},
	}
}

// derivePaths fills in paths computed from other settings.
func (c *Config) derivePaths() {
	if c.Vector.Path == "" {
		c.Vector.Path = DeriveVectorDBPath(c.Archive.Path)
	}
}

// expandEnv resolves ${ENV_VAR} references in fields that commonly hold
// secrets or deployment-specific endpoints.
func (c *Config) expandEnv() {
	c.Vector.OpenAI.APIKey = expand(c.Vector.OpenAI.APIKey)
	c.Generation.Endpoint = expand(c.Generation.Endpoint)
}

func expand(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Vector.ChunkOverlap >= c.Vector.ChunkSize {
		return fmt.Errorf("config: vector.chunk_overlap %d must be smaller than vector.chunk_size %d",
			c.Vector.ChunkOverlap, c.Vector.ChunkSize)
	}
	switch c.Vector.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("config: unknown vector.provider %q (want \"ollama\" or \"openai\")", c.Vector.Provider)
	}
	return nil
}

// DeriveVectorDBPath returns a vector DB path derived from the archive
// path. For example, "research.db" becomes "research.vector.db".
func DeriveVectorDBPath(archivePath string) string {
	ext := filepath.Ext(archivePath)
	base := strings.TrimSuffix(archivePath, ext)
	if ext == "" {
		ext = ".db"
	}
	return base + ".vector" + ext
}
