package main

import (
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/embed"
	"github.com/dgallion1/docrank/internal/keywords"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/report"
)

// newModel returns the process-wide embedding handle. The model is built on
// first use and shared, read-only, by the scorer and keyword extractor.
func newModel(ec config.EmbeddingConfig, stats *embed.Stats, log *slog.Logger) *embed.Lazy {
	return embed.NewLazy(func() (embed.Embedder, error) {
		var base embed.Embedder
		switch ec.Provider {
		case config.ProviderOpenAI:
			base = embed.NewOpenAIEmbedder(embed.OpenAIConfig{
				APIKey:     ec.APIKey,
				BaseURL:    ec.BaseURL,
				Model:      ec.Model,
				Dimensions: ec.Dimensions,
				MaxRetries: ec.MaxRetries,
				Timeout:    ec.Timeout,
			})
		default:
			base = embed.NewHashingEmbedder(ec.Dimensions)
		}
		log.Info("embedding model ready", "provider", ec.Provider, "model", ec.Model)
		return embed.NewBatched(embed.NewInstrumented(base, stats), ec.BatchSize, ec.Concurrency), nil
	})
}

func newPipeline(cfg config.Config, log *slog.Logger) (*pipeline.Pipeline, *embed.Stats) {
	stats := embed.NewStats(time.Hour)
	model := newModel(cfg.Embedding, stats, log)
	scorer := rank.NewScorer(
		model,
		keywords.NewEmbeddingExtractor(model),
		rank.Weights{Embedding: cfg.Ranking.EmbeddingWeight, Keyword: cfg.Ranking.KeywordWeight},
		cfg.Ranking.MaxKeywords,
	)
	p := pipeline.New(scorer, pipeline.Options{
		Parser:  parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		Report:  report.Options{TopK: cfg.Ranking.TopK, ExcerptChars: cfg.Ranking.ExcerptChars},
		Workers: cfg.Workers,
	}, log)
	return p, stats
}
