package llm

import (
	"context"

	"jobtailor/pkg/models"
)

// Extractor turns a raw job description into structured requirements.
// Implementations must either return a value of the full requirements shape
// or an error; the pipeline treats anything else as a hard failure for the
// record's analyzed transition.
type Extractor interface {
	// ExtractRequirements analyzes the description of one posting.
	ExtractRequirements(ctx context.Context, title, company, description string) (*models.ExtractedRequirements, error)

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}

// Rewriter optionally tailors an experience bullet towards a job's
// requirements. A failing or absent rewriter never blocks generation: the
// caller falls back to the original bullet text.
type Rewriter interface {
	RewriteBullet(ctx context.Context, bullet string, reqs *models.ExtractedRequirements) (string, error)
}
