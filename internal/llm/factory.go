package llm

import (
	"fmt"

	"jobtailor/internal/config"
	"jobtailor/internal/llm/providers"
)

// Provider bundles the extraction and rewrite capabilities one backend
// offers.
type Provider interface {
	Extractor
	Rewriter
}

// NewProvider creates the configured LLM provider.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.LLM.Provider {
	case "claude", "":
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("claude provider requires an API key (set LLM_API_KEY)")
		}
		return providers.NewClaudeProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
