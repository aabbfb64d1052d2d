package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobtailor/pkg/models"
)

var validate = validator.New()

// ParseExtractionResponse converts a raw model completion into validated
// requirements. Loose shapes are rejected here, at the boundary, so later
// stages only ever see well-formed data.
func ParseExtractionResponse(raw string) (*models.ExtractedRequirements, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}

	var reqs models.ExtractedRequirements
	if err := json.Unmarshal([]byte(cleaned), &reqs); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	if reqs.JobType == "" {
		reqs.JobType = models.JobTypeUnknown
	}
	if reqs.HardSkills == nil {
		reqs.HardSkills = []string{}
	}
	if reqs.SoftSkills == nil {
		reqs.SoftSkills = []string{}
	}

	if err := validate.Struct(&reqs); err != nil {
		return nil, fmt.Errorf("non-conforming requirements shape: %w", err)
	}

	return &reqs, nil
}

// stripCodeFences removes markdown code fences models occasionally wrap
// their JSON in.
func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
