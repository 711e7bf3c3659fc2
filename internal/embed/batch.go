package embed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batched splits inputs into fixed-size batches and encodes them with bounded
// concurrency. Results are written back by position, so batch boundaries and
// completion order never affect the output.
type Batched struct {
	inner       Embedder
	batchSize   int
	concurrency int
}

// NewBatched wraps inner. Non-positive sizes fall back to 16 texts per batch
// and one batch in flight.
func NewBatched(inner Embedder, batchSize, concurrency int) *Batched {
	if batchSize <= 0 {
		batchSize = 16
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Batched{inner: inner, batchSize: batchSize, concurrency: concurrency}
}

func (b *Batched) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		g.Go(func() error {
			vecs, err := b.inner.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("batch %d-%d: got %d vectors", start, end-1, len(vecs))
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
