package providers

import (
	"strings"
	"testing"

	"jobtailor/pkg/models"
)

const validResponse = `{
  "hard_skills": ["Go", "Postgres"],
  "soft_skills": ["communication"],
  "experience_years": 3,
  "job_type": "full_time",
  "is_remote": true,
  "domain": "fintech",
  "special_instructions": "",
  "fit_score": 0.75
}`

func TestParseExtractionResponse(t *testing.T) {
	reqs, err := ParseExtractionResponse(validResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reqs.HardSkills) != 2 || reqs.HardSkills[0] != "Go" {
		t.Fatalf("hard skills mismatch: %v", reqs.HardSkills)
	}
	if reqs.ExperienceYears == nil || *reqs.ExperienceYears != 3 {
		t.Fatalf("experience years mismatch: %v", reqs.ExperienceYears)
	}
	if reqs.JobType != models.JobTypeFullTime {
		t.Fatalf("job type mismatch: %v", reqs.JobType)
	}
	if !reqs.IsRemote || reqs.Domain != "fintech" || reqs.FitScore != 0.75 {
		t.Fatalf("fields mismatch: %+v", reqs)
	}
}

func TestParseExtractionResponseCodeFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	reqs, err := ParseExtractionResponse(fenced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.Domain != "fintech" {
		t.Fatalf("fenced response not parsed: %+v", reqs)
	}
}

func TestParseExtractionResponseDefaults(t *testing.T) {
	reqs, err := ParseExtractionResponse(`{"fit_score": 0}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reqs.JobType != models.JobTypeUnknown {
		t.Fatalf("missing job_type should default to unknown, got %q", reqs.JobType)
	}
	if reqs.HardSkills == nil || reqs.SoftSkills == nil {
		t.Fatalf("skill slices must be non-nil")
	}
	if reqs.ExperienceYears != nil {
		t.Fatalf("absent experience_years must stay nil")
	}
}

func TestParseExtractionResponseRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose", "Sure! Here are the requirements you asked for."},
		{"malformed json", `{"hard_skills": [`},
		{"negative years", `{"experience_years": -2, "fit_score": 0.5}`},
		{"fit score above one", `{"fit_score": 1.5}`},
		{"fit score below zero", `{"fit_score": -0.1}`},
		{"invalid job type", `{"job_type": "freelance", "fit_score": 0.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseExtractionResponse(tt.raw); err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Fatalf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewritePromptNamesSkills(t *testing.T) {
	cp := &ClaudeProvider{}
	prompt := cp.buildRewritePrompt("Built services", &models.ExtractedRequirements{HardSkills: []string{"Go", "Kafka"}})
	if !strings.Contains(prompt, "Go, Kafka") {
		t.Fatalf("rewrite prompt missing target skills: %q", prompt)
	}
	if !strings.Contains(prompt, "Built services") {
		t.Fatalf("rewrite prompt missing original bullet")
	}
}
