package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"jobtailor/internal/config"
	"jobtailor/internal/logging"
	"jobtailor/pkg/models"
	"jobtailor/pkg/utils"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	platform TEXT NOT NULL,
	platform_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	content_fingerprint TEXT NOT NULL,
	raw_description TEXT NOT NULL DEFAULT '',
	extracted_requirements JSONB,
	matched_experience JSONB,
	artifact_path TEXT NOT NULL DEFAULT '',
	failure_reason TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'new',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS jobs_content_fingerprint_key ON jobs (content_fingerprint);
CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status);
`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens the pool, pings it and bootstraps the schema. Any error here
// is fatal for the run: no stage can make progress without the store.
func Connect(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pcfg.MaxConns = int32(cfg.Database.MaxConns)
	pcfg.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout
	if cfg.Database.ApplicationName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.Database.ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logging.GetGlobalLogger()}

	if cfg.Database.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

// InsertIfNew inserts a record under the fingerprint uniqueness constraint.
// ON CONFLICT DO NOTHING makes dedup a normal outcome, not an error.
func (s *PostgresStore) InsertIfNew(ctx context.Context, rec *models.JobRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.ContentFingerprint = utils.ComputeFingerprint(rec.Company, rec.Title)
	rec.Status = models.StatusNew

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, platform, platform_id, title, company, url,
		                  content_fingerprint, raw_description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (content_fingerprint) DO NOTHING`,
		rec.ID, rec.Platform, rec.PlatformID, rec.Title, rec.Company, rec.URL,
		rec.ContentFingerprint, rec.RawDescription, rec.Status,
	)
	if err != nil {
		return false, fmt.Errorf("insert job record: %w", err)
	}

	inserted := tag.RowsAffected() > 0
	if !inserted {
		s.logger.Debug("duplicate posting skipped",
			zap.String("company", rec.Company),
			zap.String("title", rec.Title),
			zap.String("fingerprint", rec.ContentFingerprint),
		)
	}
	return inserted, nil
}

// ListByStatus materializes the full snapshot before returning, so a stage
// iterating the result never observes writes made during the same pass.
func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]models.JobRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, platform, platform_id, title, company, url,
		       content_fingerprint, raw_description,
		       extracted_requirements, matched_experience,
		       artifact_path, failure_reason, status, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at, id`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs by status %s: %w", status, err)
	}
	defer rows.Close()

	var out []models.JobRecord
	for rows.Next() {
		var (
			rec       models.JobRecord
			reqsJSON  []byte
			matchJSON []byte
			rawStatus string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Platform, &rec.PlatformID, &rec.Title, &rec.Company, &rec.URL,
			&rec.ContentFingerprint, &rec.RawDescription,
			&reqsJSON, &matchJSON,
			&rec.ArtifactPath, &rec.FailureReason, &rawStatus, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		rec.Status, err = models.ParseStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		if len(reqsJSON) > 0 {
			rec.Requirements = &models.ExtractedRequirements{}
			if err := json.Unmarshal(reqsJSON, rec.Requirements); err != nil {
				return nil, fmt.Errorf("decode requirements for %s: %w", rec.ID, err)
			}
		}
		if len(matchJSON) > 0 {
			if err := json.Unmarshal(matchJSON, &rec.MatchedExperience); err != nil {
				return nil, fmt.Errorf("decode matched experience for %s: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs by status %s: %w", status, err)
	}
	return out, nil
}

// Update applies one patch in a single statement. The WHERE clause pins the
// prior status, so a record touched by anything else since the snapshot is
// reported as ErrNotFound instead of being overwritten.
func (s *PostgresStore) Update(ctx context.Context, id string, patch Patch) error {
	if err := ValidatePatch(patch); err != nil {
		return err
	}

	var reqsJSON, matchJSON []byte
	var err error
	if patch.Requirements != nil {
		if reqsJSON, err = json.Marshal(patch.Requirements); err != nil {
			return fmt.Errorf("encode requirements: %w", err)
		}
	}
	if patch.MatchedExperience != nil {
		if matchJSON, err = json.Marshal(patch.MatchedExperience); err != nil {
			return fmt.Errorf("encode matched experience: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET
			extracted_requirements = COALESCE($3, extracted_requirements),
			matched_experience     = COALESCE($4, matched_experience),
			artifact_path          = CASE WHEN $5 <> '' THEN $5 ELSE artifact_path END,
			failure_reason         = CASE WHEN $6 <> '' THEN $6 ELSE failure_reason END,
			status                 = $7,
			updated_at             = $8
		WHERE id = $1 AND status = $2`,
		id, patch.From, reqsJSON, matchJSON, patch.ArtifactPath, patch.Reason,
		patch.Status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update job record %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s status=%s", ErrNotFound, id, patch.From)
	}
	return nil
}

// Skip marks a record skipped regardless of its current live status.
// Terminal records are left untouched.
func (s *PostgresStore) Skip(ctx context.Context, id, reason string) error {
	if reason == "" {
		return errInvalidf("skip requires a reason")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1 AND status NOT IN ($5, $6, $7)`,
		id, models.StatusSkipped, reason, time.Now().UTC(),
		models.StatusGenerated, models.StatusFailed, models.StatusSkipped,
	)
	if err != nil {
		return fmt.Errorf("skip job record %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%s (missing or terminal)", ErrNotFound, id)
	}
	return nil
}

// StatusCounts reports the number of records per status.
func (s *PostgresStore) StatusCounts(ctx context.Context) (map[models.Status]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var raw string
		var n int
		if err := rows.Scan(&raw, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		status, err := models.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	return counts, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func errInvalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidUpdate, fmt.Sprintf(format, args...))
}
