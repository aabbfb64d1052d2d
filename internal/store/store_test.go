package store

import (
	"errors"
	"testing"

	"jobtailor/pkg/models"
)

func TestValidatePatch(t *testing.T) {
	reqs := &models.ExtractedRequirements{HardSkills: []string{"go"}}

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{
			"analyze transition with requirements",
			Patch{From: models.StatusNew, Status: models.StatusAnalyzed, Requirements: reqs},
			false,
		},
		{
			"analyze transition without requirements",
			Patch{From: models.StatusNew, Status: models.StatusAnalyzed},
			true,
		},
		{
			"match transition with empty list",
			Patch{From: models.StatusAnalyzed, Status: models.StatusMatched, MatchedExperience: []models.Match{}},
			false,
		},
		{
			"match transition with nil list",
			Patch{From: models.StatusAnalyzed, Status: models.StatusMatched},
			true,
		},
		{
			"generate transition with artifact",
			Patch{From: models.StatusMatched, Status: models.StatusGenerated, ArtifactPath: "output/acme.pdf"},
			false,
		},
		{
			"generate transition without artifact",
			Patch{From: models.StatusMatched, Status: models.StatusGenerated},
			true,
		},
		{
			"fail transition with reason",
			Patch{From: models.StatusMatched, Status: models.StatusFailed, Reason: "compile error"},
			false,
		},
		{
			"fail transition without reason",
			Patch{From: models.StatusMatched, Status: models.StatusFailed},
			true,
		},
		{
			"skip with reason from new",
			Patch{From: models.StatusNew, Status: models.StatusSkipped, Reason: "manual"},
			false,
		},
		{
			"skip without reason",
			Patch{From: models.StatusNew, Status: models.StatusSkipped},
			true,
		},
		{
			"illegal transition",
			Patch{From: models.StatusNew, Status: models.StatusGenerated, ArtifactPath: "x.pdf"},
			true,
		},
		{
			"terminal source",
			Patch{From: models.StatusGenerated, Status: models.StatusSkipped, Reason: "late skip"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.patch)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %+v", tt.patch)
				}
				if !errors.Is(err, ErrInvalidUpdate) {
					t.Fatalf("error must wrap ErrInvalidUpdate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
