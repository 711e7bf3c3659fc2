package embed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint. Local
// inference servers that speak the same API are reached through BaseURL.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIEmbedder calls the /embeddings endpoint through the official SDK.
type OpenAIEmbedder struct {
	model      string
	dimensions int
	maxRetries int
	retryDelay time.Duration
	client     openai.Client
}

// NewOpenAIEmbedder creates an embeddings client.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	// Retries are handled here so transient and permanent failures are
	// classified in one place.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEmbedder{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     openai.NewClient(opts...),
	}
}

// Embed encodes texts. The API rejects empty strings, so blank inputs are
// not sent and come back as zero-length vectors (cosine 0 against anything).
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var inputs []string
	var positions []int
	for i, t := range texts {
		if t == "" {
			out[i] = []float32{}
			continue
		}
		inputs = append(inputs, t)
		positions = append(positions, i)
	}
	if len(inputs) == 0 {
		return out, nil
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	var resp *openai.CreateEmbeddingResponse
	err := retry.Do(
		func() error {
			r, err := e.client.Embeddings.New(ctx, params)
			if err != nil {
				if !isTransient(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.maxRetries)+1),
		retry.Delay(e.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}

	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(inputs))
	}
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(inputs) {
			return nil, fmt.Errorf("embeddings response index %d out of range", idx)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[positions[idx]] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("embeddings response missing vector for input %d", i)
		}
	}
	return out, nil
}

// isTransient reports whether a failed call is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
