package embed

import (
	"context"
	"sync"
)

// Lazy is a shared model handle initialized on first use. Initialization runs
// exactly once; afterwards the wrapped model is only read.
type Lazy struct {
	init func() (Embedder, error)

	once  sync.Once
	model Embedder
	err   error
}

// NewLazy returns a handle that calls init on first Embed.
func NewLazy(init func() (Embedder, error)) *Lazy {
	return &Lazy{init: init}
}

// Load initializes the model if needed and returns it.
func (l *Lazy) Load() (Embedder, error) {
	l.once.Do(func() {
		l.model, l.err = l.init()
	})
	return l.model, l.err
}

func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m, err := l.Load()
	if err != nil {
		return nil, err
	}
	return m.Embed(ctx, texts)
}
