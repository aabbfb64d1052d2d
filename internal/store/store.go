// Package store is the persistence layer for job records. All pipeline
// stages read and write through it; it is the only component that touches
// the database.
package store

import (
	"context"
	"errors"

	"jobtailor/pkg/models"
)

var (
	// ErrNotFound is returned when no record matches the given id and
	// expected status. The pipeline treats it as a stale snapshot entry.
	ErrNotFound = errors.New("job record not found")

	// ErrInvalidUpdate is returned for patches whose status claims a field
	// that is not populated, or whose transition the state machine forbids.
	// The record is left untouched.
	ErrInvalidUpdate = errors.New("invalid record update")
)

// Patch is one atomic per-record update: the payload fields written by a
// stage together with the status transition that claims them. From is the
// status the record held in the stage's snapshot; the update only applies
// while the stored status still matches it.
type Patch struct {
	From   models.Status
	Status models.Status

	Requirements      *models.ExtractedRequirements
	MatchedExperience []models.Match // non-nil (possibly empty) when transitioning to matched
	ArtifactPath      string
	Reason            string
}

// Store is the record store contract consumed by the pipeline driver.
type Store interface {
	// InsertIfNew computes the content fingerprint for rec and inserts it
	// unless a record with the same fingerprint already exists. Returns
	// false for duplicates; the existing row is never mutated.
	InsertIfNew(ctx context.Context, rec *models.JobRecord) (bool, error)

	// ListByStatus returns a fully materialized snapshot of all records in
	// the given status; writes by later stages are not visible mid-iteration.
	ListByStatus(ctx context.Context, status models.Status) ([]models.JobRecord, error)

	// Update applies one validated patch atomically. Returns
	// ErrInvalidUpdate without touching the record when the patch is
	// malformed, and ErrNotFound when the record no longer holds patch.From.
	Update(ctx context.Context, id string, patch Patch) error

	// Skip marks a non-terminal record skipped with the given reason.
	Skip(ctx context.Context, id, reason string) error

	// StatusCounts reports how many records sit in each status.
	StatusCounts(ctx context.Context) (map[models.Status]int, error)

	Close()
}

// ValidatePatch checks a patch against the state machine and the
// field-per-status invariants before anything is written: a record must
// never end up in a status that claims an unpopulated field.
func ValidatePatch(patch Patch) error {
	if !models.CanTransition(patch.From, patch.Status) {
		return errInvalidf("transition %s -> %s is not allowed", patch.From, patch.Status)
	}
	switch patch.Status {
	case models.StatusAnalyzed:
		if patch.Requirements == nil {
			return errInvalidf("status analyzed requires extracted requirements")
		}
	case models.StatusMatched:
		if patch.MatchedExperience == nil {
			return errInvalidf("status matched requires a matched experience list")
		}
	case models.StatusGenerated:
		if patch.ArtifactPath == "" {
			return errInvalidf("status generated requires an artifact path")
		}
	case models.StatusFailed, models.StatusSkipped:
		if patch.Reason == "" {
			return errInvalidf("status %s requires a reason", patch.Status)
		}
	}
	return nil
}
