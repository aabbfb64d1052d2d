package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobtailor/internal/config"
)

// GeminiProvider computes text embeddings through the Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	dimension int
}

// NewGeminiProvider creates a provider configured for the Gemini API
// backend.
func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.Embeddings.APIKey)
	if apiKey == "" {
		return nil, errors.New("embeddings api key is required (set EMBEDDINGS_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: cfg.Embeddings.Model,
		dimension: cfg.Embeddings.Dimension,
	}, nil
}

// Embed returns the embedding vector for one text.
func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	dim := int32(g.dimension)
	resp, err := g.client.Models.EmbedContent(ctx, g.modelName, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("embedding api returned empty response")
	}

	vec := resp.Embeddings[0].Values
	if g.dimension > 0 && len(vec) != g.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: want %d, got %d", g.dimension, len(vec))
	}

	return vec, nil
}

// Dimension reports the configured vector dimensionality.
func (g *GeminiProvider) Dimension() int {
	return g.dimension
}
