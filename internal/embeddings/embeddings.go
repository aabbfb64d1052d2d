// Package embeddings wraps the external embedding collaborator and the
// caching layers in front of it. Every distinct text is embedded at most
// once per batch run.
package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Provider returns a fixed-dimensionality vector for a text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Batch is the run-scoped embedding cache. It is created per pipeline run
// and passed explicitly to the matcher, so repeated or concurrent runs stay
// isolated from each other.
type Batch struct {
	provider Provider

	mu      sync.Mutex
	vectors map[string][]float32
}

// NewBatch wraps a provider with a cache for the duration of one run.
func NewBatch(provider Provider) *Batch {
	return &Batch{
		provider: provider,
		vectors:  make(map[string][]float32),
	}
}

// Embed returns the cached vector for text, calling the provider only on
// the first request for each distinct text within the run.
func (b *Batch) Embed(ctx context.Context, text string) ([]float32, error) {
	key := textKey(text)

	b.mu.Lock()
	if vec, ok := b.vectors[key]; ok {
		b.mu.Unlock()
		return vec, nil
	}
	b.mu.Unlock()

	vec, err := b.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.vectors[key] = vec
	b.mu.Unlock()
	return vec, nil
}

// Dimension reports the provider's vector dimensionality.
func (b *Batch) Dimension() int {
	return b.provider.Dimension()
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
