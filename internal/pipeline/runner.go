// Package pipeline drives records through the ingest, analyze, match and
// generate stages. Each stage works on a status snapshot and advances
// records one validated transition at a time; one record's failure never
// touches another's progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jobtailor/internal/config"
	"jobtailor/internal/embeddings"
	"jobtailor/internal/generator"
	"jobtailor/internal/ingest"
	"jobtailor/internal/llm"
	"jobtailor/internal/logging"
	"jobtailor/internal/matcher"
	"jobtailor/internal/store"
	"jobtailor/pkg/models"
	"jobtailor/pkg/utils"
)

// Failure records one record that did not advance during a stage.
type Failure struct {
	RecordID string
	Title    string
	Company  string
	Reason   string
}

// StageSummary is the per-stage accounting surfaced to the CLI.
type StageSummary struct {
	Stage     string
	Processed int
	Succeeded int
	Skipped   int
	Stale     int
	Failed    int
	Failures  []Failure
}

// RunSummary aggregates a full pipeline run.
type RunSummary struct {
	RunID    string
	Duration time.Duration
	Ingest   *ingest.Result
	Stages   []StageSummary
}

// Runner owns the stage implementations. The embedder may be nil when only
// ingest or analyze stages run, and the provider may be nil for ingest-only
// invocations; stages check their collaborators before starting.
type Runner struct {
	cfg      *config.Config
	store    store.Store
	provider llm.Provider
	embedder embeddings.Provider
	profile  *models.Profile
	gen      *generator.Generator
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// New assembles a runner from its collaborators.
func New(cfg *config.Config, st store.Store, provider llm.Provider, embedder embeddings.Provider, profile *models.Profile) *Runner {
	var rewriter llm.Rewriter
	if provider != nil {
		rewriter = provider
	}
	return &Runner{
		cfg:      cfg,
		store:    st,
		provider: provider,
		embedder: embedder,
		profile:  profile,
		gen:      generator.New(cfg, rewriter),
		limiter:  newCollaboratorLimiter(cfg),
		logger:   logging.GetGlobalLogger(),
	}
}

// Ingest collects postings from the configured sources.
func (r *Runner) Ingest(ctx context.Context) ingest.Result {
	sources := ingest.SourcesFromConfig(r.cfg)
	return ingest.NewIngester(r.store).Run(ctx, sources)
}

// Analyze extracts structured requirements for every new record. A failed
// extraction leaves the record in its current status so a later run can
// retry it; records whose fit score falls below the configured threshold
// are skipped instead of analyzed.
func (r *Runner) Analyze(ctx context.Context) (StageSummary, error) {
	if r.provider == nil {
		return StageSummary{}, errors.New("analyze requires an LLM provider")
	}

	snapshot, err := r.store.ListByStatus(ctx, models.StatusNew)
	if err != nil {
		return StageSummary{}, fmt.Errorf("list new records: %w", err)
	}

	summary := newStageSummary("analyze", len(snapshot))
	forEachRecord(ctx, r.cfg.Workers.PoolSize, snapshot, func(ctx context.Context, rec models.JobRecord) {
		if err := r.limiter.Wait(ctx); err != nil {
			summary.fail(rec, err.Error())
			return
		}

		llmCtx, cancel := context.WithTimeout(ctx, r.cfg.LLM.Timeout)
		reqs, err := r.provider.ExtractRequirements(llmCtx, rec.Title, rec.Company, rec.RawDescription)
		cancel()
		if err != nil {
			// Left in place for a retry on the next run.
			r.logger.Warn("extraction failed",
				zap.String("record_id", rec.ID),
				zap.String("company", rec.Company),
				zap.Error(err),
			)
			summary.fail(rec, err.Error())
			return
		}

		if min := r.cfg.Matcher.MinFitScore; min > 0 && reqs.FitScore < min {
			reason := fmt.Sprintf("fit score %.2f below threshold %.2f", reqs.FitScore, min)
			if err := r.store.Skip(ctx, rec.ID, reason); err != nil {
				summary.fail(rec, err.Error())
				return
			}
			summary.skip()
			return
		}

		err = r.store.Update(ctx, rec.ID, store.Patch{
			From:         models.StatusNew,
			Status:       models.StatusAnalyzed,
			Requirements: reqs,
		})
		summary.record(rec, err)
	})

	r.logStage(summary)
	return summary.StageSummary, nil
}

// Match selects the top experience items for every analyzed record. The
// embedding batch is scoped to this invocation, so repeated runs never see
// each other's vectors.
func (r *Runner) Match(ctx context.Context) (StageSummary, error) {
	if r.embedder == nil {
		return StageSummary{}, errors.New("match requires an embedding provider")
	}

	snapshot, err := r.store.ListByStatus(ctx, models.StatusAnalyzed)
	if err != nil {
		return StageSummary{}, fmt.Errorf("list analyzed records: %w", err)
	}

	corpus := r.profile.Bullets()
	batch := embeddings.NewBatch(r.embedder)
	m := matcher.New(batch)

	summary := newStageSummary("match", len(snapshot))
	forEachRecord(ctx, r.cfg.Workers.PoolSize, snapshot, func(ctx context.Context, rec models.JobRecord) {
		if err := r.limiter.Wait(ctx); err != nil {
			summary.fail(rec, err.Error())
			return
		}

		result, err := m.SelectTopMatches(ctx, rec.Requirements, rec.Title, corpus, r.cfg.Matcher.TopN)
		if err != nil {
			// Embedding errors are transient; the record stays analyzed.
			r.logger.Warn("matching failed",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
			summary.fail(rec, err.Error())
			return
		}

		matches := result.Matches
		if matches == nil {
			matches = []models.Match{}
		}
		err = r.store.Update(ctx, rec.ID, store.Patch{
			From:              models.StatusAnalyzed,
			Status:            models.StatusMatched,
			MatchedExperience: matches,
		})
		summary.record(rec, err)
	})

	r.logStage(summary)
	return summary.StageSummary, nil
}

// Generate produces a resume artifact for every matched record. A failed
// generation marks that record failed with the error as reason; the other
// records are unaffected.
func (r *Runner) Generate(ctx context.Context) (StageSummary, error) {
	snapshot, err := r.store.ListByStatus(ctx, models.StatusMatched)
	if err != nil {
		return StageSummary{}, fmt.Errorf("list matched records: %w", err)
	}

	summary := newStageSummary("generate", len(snapshot))
	forEachRecord(ctx, r.cfg.Workers.PoolSize, snapshot, func(ctx context.Context, rec models.JobRecord) {
		path, genErr := r.gen.Generate(ctx, &rec, r.profile)
		if genErr != nil {
			r.logger.Error("generation failed",
				zap.String("record_id", rec.ID),
				zap.String("company", rec.Company),
				zap.Error(genErr),
			)
			if err := r.store.Update(ctx, rec.ID, store.Patch{
				From:   models.StatusMatched,
				Status: models.StatusFailed,
				Reason: genErr.Error(),
			}); err != nil {
				summary.fail(rec, err.Error())
				return
			}
			summary.fail(rec, genErr.Error())
			return
		}

		err := r.store.Update(ctx, rec.ID, store.Patch{
			From:         models.StatusMatched,
			Status:       models.StatusGenerated,
			ArtifactPath: path,
		})
		summary.record(rec, err)
	})

	r.logStage(summary)
	return summary.StageSummary, nil
}

// Run executes the full pipeline in stage order. A stage-level error stops
// the run; per-record failures do not.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	run := RunSummary{RunID: utils.GenerateRunID()}

	r.logger.Info("pipeline run started", zap.String("run_id", run.RunID))

	ingestRes := r.Ingest(ctx)
	run.Ingest = &ingestRes

	for _, stage := range []func(context.Context) (StageSummary, error){r.Analyze, r.Match, r.Generate} {
		summary, err := stage(ctx)
		if err != nil {
			return run, err
		}
		run.Stages = append(run.Stages, summary)
	}

	run.Duration = time.Since(start)
	r.logger.Info("pipeline run finished",
		zap.String("run_id", run.RunID),
		zap.String("duration", utils.FormatDuration(run.Duration)),
	)
	return run, nil
}

// ===== stage accounting =====

type stageSummary struct {
	StageSummary
	mu sync.Mutex
}

func newStageSummary(stage string, processed int) *stageSummary {
	return &stageSummary{StageSummary: StageSummary{Stage: stage, Processed: processed}}
}

// record accounts for one update attempt. ErrNotFound means another run
// advanced the record after the snapshot was taken; that is stale, not
// failed.
func (s *stageSummary) record(rec models.JobRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.Succeeded++
	case errors.Is(err, store.ErrNotFound):
		s.Stale++
	default:
		s.Failed++
		s.Failures = append(s.Failures, Failure{
			RecordID: rec.ID,
			Title:    rec.Title,
			Company:  rec.Company,
			Reason:   err.Error(),
		})
	}
}

func (s *stageSummary) fail(rec models.JobRecord, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
	s.Failures = append(s.Failures, Failure{
		RecordID: rec.ID,
		Title:    rec.Title,
		Company:  rec.Company,
		Reason:   reason,
	})
}

func (s *stageSummary) skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Skipped++
}

func (r *Runner) logStage(s *stageSummary) {
	r.logger.Info("stage finished",
		zap.String("stage", s.Stage),
		zap.Int("processed", s.Processed),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("skipped", s.Skipped),
		zap.Int("stale", s.Stale),
		zap.Int("failed", s.Failed),
	)
}
