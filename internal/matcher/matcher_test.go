package matcher

import (
	"context"
	"math"
	"testing"

	"jobtailor/internal/embeddings"
	"jobtailor/pkg/models"
)

// stubEmbedder returns fixed vectors per text and counts provider calls.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubEmbedder) Dimension() int { return 3 }

func corpusOf(texts ...string) []models.ExperienceItem {
	items := make([]models.ExperienceItem, len(texts))
	for i, txt := range texts {
		items[i] = models.ExperienceItem{ID: txt, Text: txt}
	}
	return items
}

func reqsWithSkills(skills ...string) *models.ExtractedRequirements {
	return &models.ExtractedRequirements{HardSkills: skills, Domain: "backend"}
}

func TestSelectTopMatchesRanksBySimilarity(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		"backend: go, postgres": {1, 0, 0},
		"built go services":     {1, 0, 0},   // identical to query
		"tuned postgres":        {0.9, 0.1, 0}, // close
		"wrote css":             {0, 1, 0},   // orthogonal
	}}
	m := New(embeddings.NewBatch(stub))

	result, err := m.SelectTopMatches(context.Background(), reqsWithSkills("go", "postgres"), "Backend Engineer",
		corpusOf("built go services", "tuned postgres", "wrote css"), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Matches))
	}
	if result.Matches[0].ItemID != "built go services" {
		t.Fatalf("expected best match first, got %q", result.Matches[0].ItemID)
	}
	if result.Matches[1].ItemID != "tuned postgres" {
		t.Fatalf("expected second best, got %q", result.Matches[1].ItemID)
	}
	if result.Matches[0].Score < result.Matches[1].Score {
		t.Fatalf("scores must descend: %v", result.Matches)
	}
}

func TestSelectTopMatchesBoundedByCorpus(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	m := New(embeddings.NewBatch(stub))

	result, err := m.SelectTopMatches(context.Background(), reqsWithSkills("go"), "Engineer", corpusOf("a", "b"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("expected min(N, corpus) = 2 matches, got %d", len(result.Matches))
	}
}

func TestSelectTopMatchesTieBreakKeepsCorpusOrder(t *testing.T) {
	// All items identical to the query: a three-way tie.
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	m := New(embeddings.NewBatch(stub))

	result, err := m.SelectTopMatches(context.Background(), reqsWithSkills("go"), "Engineer",
		corpusOf("first", "second", "third"), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, w := range want {
		if result.Matches[i].ItemID != w {
			t.Fatalf("tie order broken at %d: got %q, want %q", i, result.Matches[i].ItemID, w)
		}
	}
}

func TestSelectTopMatchesDeterministic(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0.5, 0.5, 0},
		"c": {0, 1, 0},
	}}
	m := New(embeddings.NewBatch(stub))
	corpus := corpusOf("a", "b", "c")
	reqs := reqsWithSkills("go")

	first, err := m.SelectTopMatches(context.Background(), reqs, "Engineer", corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.SelectTopMatches(context.Background(), reqs, "Engineer", corpus, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first.Matches {
		if first.Matches[i] != second.Matches[i] {
			t.Fatalf("results differ between runs at %d: %v vs %v", i, first.Matches[i], second.Matches[i])
		}
	}
}

func TestSelectTopMatchesFallsBackToTitle(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	m := New(embeddings.NewBatch(stub))

	result, err := m.SelectTopMatches(context.Background(), &models.ExtractedRequirements{}, "Platform Engineer", corpusOf("a"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("title fallback should still match, got %d", len(result.Matches))
	}
}

func TestSelectTopMatchesEmptyQueryAndCorpus(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	m := New(embeddings.NewBatch(stub))

	// No skills, no domain, blank title: empty result, no error, no calls.
	result, err := m.SelectTopMatches(context.Background(), nil, "   ", corpusOf("a"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Fatalf("expected empty result, got %v", result.Matches)
	}
	if stub.calls != 0 {
		t.Fatalf("no embedding calls expected for empty query, got %d", stub.calls)
	}

	// Empty corpus: empty result, no error.
	result, err = m.SelectTopMatches(context.Background(), reqsWithSkills("go"), "Engineer", nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Fatalf("expected empty result for empty corpus, got %v", result.Matches)
	}
}

func TestBuildQueryText(t *testing.T) {
	tests := []struct {
		name  string
		reqs  *models.ExtractedRequirements
		title string
		want  string
	}{
		{"domain and skills", &models.ExtractedRequirements{Domain: "backend", HardSkills: []string{"go", "sql"}}, "T", "backend: go, sql"},
		{"skills only", &models.ExtractedRequirements{HardSkills: []string{"go"}}, "T", "go"},
		{"domain only", &models.ExtractedRequirements{Domain: "infra"}, "T", "infra"},
		{"title fallback", &models.ExtractedRequirements{}, "Site Reliability Engineer", "Site Reliability Engineer"},
		{"nil requirements", nil, "DevOps", "DevOps"},
		{"blank skills ignored", &models.ExtractedRequirements{HardSkills: []string{"  ", ""}}, "Title", "Title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQueryText(tt.reqs, tt.title); got != tt.want {
				t.Fatalf("buildQueryText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
