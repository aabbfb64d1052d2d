// Package matcher ranks the experience corpus against a job's extracted
// requirements by embedding similarity. The dataset is small and bounded,
// so an in-memory linear scan is all the "index" it needs.
package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jobtailor/internal/embeddings"
	"jobtailor/internal/logging"
	"jobtailor/pkg/models"
	"jobtailor/pkg/utils"
)

// scoreTolerance below which two similarities count as a tie; ties keep
// the original profile order.
const scoreTolerance = 1e-9

// maxSkillLen truncates pathological "skills" that are really sentences
// before they dominate the query text.
const maxSkillLen = 50

// Matcher selects the top-N experience items for one job. It is created
// per pipeline run around the run's embedding batch, so nothing leaks
// between runs.
type Matcher struct {
	batch  *embeddings.Batch
	logger *zap.Logger
}

// New creates a matcher bound to one run's embedding batch.
func New(batch *embeddings.Batch) *Matcher {
	return &Matcher{
		batch:  batch,
		logger: logging.GetGlobalLogger(),
	}
}

// SelectTopMatches ranks corpus against the job's requirements and returns
// the top n matches, descending by cosine similarity. The job title is the
// fallback query when extraction produced no usable skills; when no query
// text can be formed at all the result is empty rather than an error.
func (m *Matcher) SelectTopMatches(ctx context.Context, reqs *models.ExtractedRequirements, title string, corpus []models.ExperienceItem, n int) (models.MatchResult, error) {
	query := buildQueryText(reqs, title)
	if query == "" {
		m.logger.Warn("no query text could be formed, returning empty match result",
			zap.String("title", title),
		)
		return models.MatchResult{Matches: []models.Match{}}, nil
	}
	if len(corpus) == 0 {
		return models.MatchResult{Matches: []models.Match{}}, nil
	}

	queryVec, err := m.batch.Embed(ctx, query)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("embed query: %w", err)
	}

	matches := make([]models.Match, 0, len(corpus))
	for _, item := range corpus {
		itemVec, err := m.batch.Embed(ctx, item.Text)
		if err != nil {
			return models.MatchResult{}, fmt.Errorf("embed experience item %s: %w", item.ID, err)
		}
		matches = append(matches, models.Match{
			ItemID: item.ID,
			Score:  CosineSimilarity(queryVec, itemVec),
		})
	}

	// Stable sort plus the tolerance comparison keeps near-equal scores in
	// profile order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score+scoreTolerance
	})

	if n < len(matches) {
		matches = matches[:n]
	}

	m.logger.Debug("matching completed",
		zap.String("query", utils.TruncateForLog(query, 120)),
		zap.Int("selected", len(matches)),
	)

	return models.MatchResult{Matches: matches}, nil
}

// buildQueryText forms the query representation for one job: domain plus
// hard skills, falling back to the job title when extraction came back
// empty.
func buildQueryText(reqs *models.ExtractedRequirements, title string) string {
	var skills []string
	domain := ""
	if reqs != nil {
		domain = strings.TrimSpace(reqs.Domain)
		for _, s := range reqs.HardSkills {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if len(s) > maxSkillLen {
				s = s[:maxSkillLen]
			}
			skills = append(skills, s)
		}
	}

	switch {
	case len(skills) > 0 && domain != "":
		return domain + ": " + strings.Join(skills, ", ")
	case len(skills) > 0:
		return strings.Join(skills, ", ")
	case domain != "":
		return domain
	default:
		return strings.TrimSpace(title)
	}
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-norm inputs score 0 rather than erroring; the caller
// only uses the value for relative ranking.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
