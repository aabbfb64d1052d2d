package embeddings

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type countingProvider struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newCountingProvider() *countingProvider {
	return &countingProvider{calls: make(map[string]int)}
}

func (c *countingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.calls[text]++
	return []float32{float32(len(text)), 1, 0}, nil
}

func (c *countingProvider) Dimension() int { return 3 }

func (c *countingProvider) callCount(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[text]
}

func TestBatchEmbedsEachTextOnce(t *testing.T) {
	provider := newCountingProvider()
	batch := NewBatch(provider)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := batch.Embed(ctx, "built go services"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := provider.callCount("built go services"); got != 1 {
		t.Fatalf("provider called %d times for one text, want 1", got)
	}

	if _, err := batch.Embed(ctx, "another text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := provider.callCount("another text"); got != 1 {
		t.Fatalf("distinct text should reach the provider once, got %d", got)
	}
}

func TestBatchReturnsCachedVector(t *testing.T) {
	provider := newCountingProvider()
	batch := NewBatch(provider)
	ctx := context.Background()

	first, err := batch.Embed(ctx, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := batch.Embed(ctx, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}
}

func TestBatchErrorsAreNotCached(t *testing.T) {
	provider := newCountingProvider()
	provider.err = errors.New("quota exceeded")
	batch := NewBatch(provider)
	ctx := context.Background()

	if _, err := batch.Embed(ctx, "text"); err == nil {
		t.Fatalf("expected provider error")
	}

	// Provider recovers; the batch must retry instead of caching the failure.
	provider.err = nil
	if _, err := batch.Embed(ctx, "text"); err != nil {
		t.Fatalf("recovered provider should succeed: %v", err)
	}
}

func TestBatchesAreIsolated(t *testing.T) {
	provider := newCountingProvider()
	ctx := context.Background()

	first := NewBatch(provider)
	if _, err := first.Embed(ctx, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := NewBatch(provider)
	if _, err := second.Embed(ctx, "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := provider.callCount("text"); got != 2 {
		t.Fatalf("separate batches must not share caches, provider called %d times", got)
	}
}
