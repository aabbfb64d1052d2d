package pipeline

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"jobtailor/internal/config"
	"jobtailor/pkg/models"
)

// newCollaboratorLimiter builds the shared rate limiter for external API
// calls. The configured rate is calls per minute; burst matches the pool
// size so a fresh run does not start with an artificial stall.
func newCollaboratorLimiter(cfg *config.Config) *rate.Limiter {
	perSecond := rate.Limit(float64(cfg.Workers.RateLimit) / 60.0)
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(perSecond, cfg.Workers.PoolSize)
}

// forEachRecord fans records out to poolSize workers. fn is responsible
// for its own error accounting; the pool only guarantees every record is
// visited once unless the context is canceled first.
func forEachRecord(ctx context.Context, poolSize int, records []models.JobRecord, fn func(ctx context.Context, rec models.JobRecord)) {
	if poolSize < 1 {
		poolSize = 1
	}
	if len(records) < poolSize {
		poolSize = len(records)
	}
	if poolSize == 0 {
		return
	}

	jobs := make(chan models.JobRecord)
	var wg sync.WaitGroup

	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				fn(ctx, rec)
			}
		}()
	}

	for _, rec := range records {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
