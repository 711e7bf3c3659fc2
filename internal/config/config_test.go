package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.True(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, ProviderHashing, cfg.Embedding.Provider)
	assert.Equal(t, "all-MiniLM-L12-v2", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, 16, cfg.Embedding.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 0.8, cfg.Ranking.EmbeddingWeight)
	assert.Equal(t, 0.2, cfg.Ranking.KeywordWeight)
	assert.Equal(t, 10, cfg.Ranking.MaxKeywords)
	assert.Equal(t, 5, cfg.Ranking.TopK)
	assert.Equal(t, 1000, cfg.Ranking.ExcerptChars)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
workers: 8
embedding:
  provider: openai
  base_url: http://localhost:11434/v1
  timeout: 5s
ranking:
  top_k: 3
  keyword_weight: 0.5
`), 0o644))

	t.Setenv("DOCRANK_WORKERS", "2")
	t.Setenv("DOCRANK_RANKING_TOP_K", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ProviderOpenAI, cfg.Embedding.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Embedding.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 7, cfg.Ranking.TopK)
	assert.Equal(t, 0.5, cfg.Ranking.KeywordWeight)
	assert.Equal(t, 0.8, cfg.Ranking.EmbeddingWeight)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Ranking.KeywordWeight = -0.1 }},
		{"zero top_k", func(c *Config) { c.Ranking.TopK = 0 }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }},
		{"zero excerpt", func(c *Config) { c.Ranking.ExcerptChars = 0 }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "magic" }},
		{"openai without endpoint", func(c *Config) { c.Embedding.Provider = ProviderOpenAI }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateServe_RequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateServe())

	cfg.APIKey = "secret"
	assert.NoError(t, cfg.ValidateServe())
}
