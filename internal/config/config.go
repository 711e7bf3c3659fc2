package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EmbeddingConfig selects and tunes the embedding model.
type EmbeddingConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Dimensions  int           `mapstructure:"dimensions"`
	BatchSize   int           `mapstructure:"batch_size"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RankingConfig holds the scoring and report knobs.
type RankingConfig struct {
	EmbeddingWeight float64 `mapstructure:"embedding_weight"`
	KeywordWeight   float64 `mapstructure:"keyword_weight"`
	MaxKeywords     int     `mapstructure:"max_keywords"`
	TopK            int     `mapstructure:"top_k"`
	ExcerptChars    int     `mapstructure:"excerpt_chars"`
}

type Config struct {
	Port string `mapstructure:"port"`

	// Auth for the HTTP API
	APIKey string `mapstructure:"api_key"`

	// Fan-out for per-document work
	Workers int `mapstructure:"workers"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Run state retention for the HTTP API
	RunTTL time.Duration `mapstructure:"run_ttl"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`

	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
}

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("workers", 4)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("run_ttl", time.Hour)
	v.SetDefault("pdf_fallback_pdftotext", true)

	v.SetDefault("embedding.provider", ProviderHashing)
	v.SetDefault("embedding.model", "all-MiniLM-L12-v2")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.batch_size", 16)
	v.SetDefault("embedding.concurrency", 2)
	v.SetDefault("embedding.max_retries", 3)
	v.SetDefault("embedding.timeout", 60*time.Second)

	v.SetDefault("ranking.embedding_weight", 0.8)
	v.SetDefault("ranking.keyword_weight", 0.2)
	v.SetDefault("ranking.max_keywords", 10)
	v.SetDefault("ranking.top_k", 5)
	v.SetDefault("ranking.excerpt_chars", 1000)
}

// Load reads defaults, then the config file (cfgFile, or docrank.yaml in the
// working directory or $HOME/.docrank), then DOCRANK_* environment variables.
// A missing default config file is not an error.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOCRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docrank")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.docrank")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}

	e := c.Embedding
	switch e.Provider {
	case ProviderHashing:
	case ProviderOpenAI:
		if e.BaseURL == "" && e.APIKey == "" {
			return fmt.Errorf("embedding.provider %q needs embedding.base_url or embedding.api_key", e.Provider)
		}
		if e.Model == "" {
			return fmt.Errorf("embedding.model is required")
		}
	default:
		return fmt.Errorf("unknown embedding.provider %q", e.Provider)
	}
	if e.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", e.BatchSize)
	}
	if e.Concurrency <= 0 {
		return fmt.Errorf("embedding.concurrency must be positive, got %d", e.Concurrency)
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries must not be negative, got %d", e.MaxRetries)
	}

	r := c.Ranking
	if r.EmbeddingWeight < 0 || r.KeywordWeight < 0 {
		return fmt.Errorf("ranking weights must not be negative")
	}
	if r.TopK <= 0 {
		return fmt.Errorf("ranking.top_k must be positive, got %d", r.TopK)
	}
	if r.ExcerptChars <= 0 {
		return fmt.Errorf("ranking.excerpt_chars must be positive, got %d", r.ExcerptChars)
	}
	if r.MaxKeywords <= 0 {
		return fmt.Errorf("ranking.max_keywords must be positive, got %d", r.MaxKeywords)
	}
	return nil
}

// ValidateServe adds the checks that only apply to the HTTP server.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (DOCRANK_API_KEY)")
	}
	return nil
}
