// Package ingest collects raw postings from configured sources and stores
// them as new job records, relying on the store's fingerprint dedup to
// keep reruns idempotent.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/logging"
	"jobtailor/internal/store"
	"jobtailor/pkg/models"
)

// Result summarizes one ingestion pass.
type Result struct {
	Fetched    int
	Inserted   int
	Duplicates int
	Failed     int
}

// Ingester fetches from sources and inserts deduplicated records.
type Ingester struct {
	store   store.Store
	cleaner *DescriptionCleaner
	logger  *zap.Logger
}

func NewIngester(st store.Store) *Ingester {
	return &Ingester{
		store:   st,
		cleaner: NewDescriptionCleaner(),
		logger:  logging.GetGlobalLogger(),
	}
}

// SourcesFromConfig builds the configured feed sources.
func SourcesFromConfig(cfg *config.Config) []Source {
	sources := make([]Source, 0, len(cfg.Ingest.Feeds))
	for _, feed := range cfg.Ingest.Feeds {
		sources = append(sources, NewFeedSource(feed))
	}
	return sources
}

// Run fetches every source and inserts what is new. A failing source is
// logged and counted; the remaining sources still run.
func (ing *Ingester) Run(ctx context.Context, sources []Source) Result {
	var res Result
	for _, src := range sources {
		postings, err := src.Fetch(ctx)
		if err != nil {
			ing.logger.Error("source fetch failed",
				zap.String("source", src.Name()),
				zap.Error(err),
			)
			res.Failed++
			continue
		}
		res.Fetched += len(postings)

		for _, p := range postings {
			inserted, err := ing.insert(ctx, p)
			switch {
			case err != nil:
				ing.logger.Warn("insert failed",
					zap.String("source", src.Name()),
					zap.String("title", p.Title),
					zap.Error(err),
				)
				res.Failed++
			case inserted:
				res.Inserted++
			default:
				res.Duplicates++
			}
		}
	}

	ing.logger.Info("ingestion finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("inserted", res.Inserted),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", res.Failed),
	)
	return res
}

func (ing *Ingester) insert(ctx context.Context, p models.Posting) (bool, error) {
	rec := &models.JobRecord{
		Platform:       p.Platform,
		PlatformID:     p.PlatformID,
		Title:          p.Title,
		Company:        p.Company,
		URL:            p.URL,
		RawDescription: ing.cleaner.Clean(p.Description),
	}
	return ing.store.InsertIfNew(ctx, rec)
}
