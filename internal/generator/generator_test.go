package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobtailor/internal/config"
	"jobtailor/pkg/models"
)

type stubRewriter struct {
	rewrite func(bullet string) (string, error)
	calls   int
}

func (s *stubRewriter) RewriteBullet(_ context.Context, bullet string, _ *models.ExtractedRequirements) (string, error) {
	s.calls++
	if s.rewrite == nil {
		return bullet, nil
	}
	return s.rewrite(bullet)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Generator.OutputDir = t.TempDir()
	cfg.Generator.Theme = "default"
	cfg.LLM.RewriteEnabled = false
	return cfg
}

func testProfile() *models.Profile {
	return &models.Profile{
		Personal: models.Personal{Name: "Jane Doe", Email: "jane@example.com"},
		Experiences: []models.Experience{
			{Company: "Acme", Role: "Engineer", Bullets: []string{"Built services", "Ran migrations"}},
		},
	}
}

func matchedRecord(id, company string) *models.JobRecord {
	return &models.JobRecord{
		ID:                id,
		Title:             "Engineer",
		Company:           company,
		Status:            models.StatusMatched,
		Requirements:      &models.ExtractedRequirements{HardSkills: []string{"go"}},
		MatchedExperience: []models.Match{{ItemID: "Acme#0", Score: 0.9}},
	}
}

func TestGenerateWritesArtifact(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, nil)
	g.compile = func(_ context.Context, _ *config.Config, source string) ([]byte, error) {
		if !strings.Contains(source, "Jane Doe") {
			t.Fatalf("compile input missing rendered content")
		}
		return []byte("%PDF-1.5 fake"), nil
	}

	path, err := g.Generate(context.Background(), matchedRecord("11112222-aaaa", "Acme"), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "%PDF-1.5 fake" {
		t.Fatalf("artifact content mismatch")
	}
	if filepath.Ext(path) != ".pdf" {
		t.Fatalf("expected pdf extension, got %q", path)
	}
	if !strings.Contains(filepath.Base(path), "Acme") {
		t.Fatalf("artifact name should carry record identity: %q", path)
	}
}

func TestGenerateFailureLeavesNoArtifact(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, nil)
	g.compile = func(_ context.Context, _ *config.Config, _ string) ([]byte, error) {
		return nil, errors.New("missing package charter")
	}

	_, err := g.Generate(context.Background(), matchedRecord("deadbeef", "Initech"), testProfile())
	if err == nil {
		t.Fatalf("expected compile error")
	}

	entries, readErr := os.ReadDir(cfg.Generator.OutputDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("failed generation must not leave artifacts, found %d", len(entries))
	}
}

func TestGenerateFailureIsolation(t *testing.T) {
	cfg := testConfig(t)
	g := New(cfg, nil)
	g.compile = func(_ context.Context, _ *config.Config, source string) ([]byte, error) {
		if strings.Contains(source, "Broken") {
			return nil, errors.New("boom")
		}
		return []byte("pdf"), nil
	}

	if _, err := g.Generate(context.Background(), matchedRecord("id-b", "Broken Co"), testProfile()); err == nil {
		t.Fatalf("expected failure for broken record")
	}
	path, err := g.Generate(context.Background(), matchedRecord("id-a", "Acme"), testProfile())
	if err != nil {
		t.Fatalf("healthy record affected by earlier failure: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestGenerateRequiresMatches(t *testing.T) {
	g := New(testConfig(t), nil)
	rec := matchedRecord("id", "Acme")
	rec.MatchedExperience = nil

	if _, err := g.Generate(context.Background(), rec, testProfile()); err == nil {
		t.Fatalf("expected error for record without matches")
	}
}

func TestGenerateUsesRewrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.RewriteEnabled = true
	rw := &stubRewriter{rewrite: func(string) (string, error) {
		return "Built services handling 1M requests", nil
	}}

	var compiled string
	g := New(cfg, rw)
	g.compile = func(_ context.Context, _ *config.Config, source string) ([]byte, error) {
		compiled = source
		return []byte("pdf"), nil
	}

	if _, err := g.Generate(context.Background(), matchedRecord("id", "Acme"), testProfile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rw.calls != 1 {
		t.Fatalf("expected one rewrite call, got %d", rw.calls)
	}
	if !strings.Contains(compiled, "1M requests") {
		t.Fatalf("rewritten bullet missing from rendered source")
	}
}

func TestGenerateRewriteFailureFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.RewriteEnabled = true
	rw := &stubRewriter{rewrite: func(string) (string, error) {
		return "", errors.New("rate limited")
	}}

	var compiled string
	g := New(cfg, rw)
	g.compile = func(_ context.Context, _ *config.Config, source string) ([]byte, error) {
		compiled = source
		return []byte("pdf"), nil
	}

	if _, err := g.Generate(context.Background(), matchedRecord("id", "Acme"), testProfile()); err != nil {
		t.Fatalf("rewrite failure must not block generation: %v", err)
	}
	if !strings.Contains(compiled, "Built services") {
		t.Fatalf("original bullet missing after rewrite failure")
	}
}
