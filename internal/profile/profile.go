// Package profile loads the static user profile that supplies the
// experience corpus for matching and the résumé content for generation.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobtailor/pkg/models"
)

// Load reads and parses profile.yaml. The profile is read-only for the
// lifetime of a pipeline run.
func Load(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p models.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if len(p.Bullets()) == 0 {
		return nil, fmt.Errorf("profile %s contains no experience bullets", path)
	}

	return &p, nil
}
