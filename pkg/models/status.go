// Status state machine for job records.
//
// Valid status graph:
//
//	new ──► analyzed ──► matched ──► generated
//	             │           │
//	             └───────────┴──► failed
//	(skipped is reachable from every non-terminal state)
//
// generated, failed and skipped are terminal.
package models

import "fmt"

// Status represents the pipeline position of a JobRecord. Values mirror the
// job_status column in Postgres.
type Status string

const (
	StatusNew       Status = "new"
	StatusAnalyzed  Status = "analyzed"
	StatusMatched   Status = "matched"
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// validTransitions lists every allowed (from → to) pair. skipped is handled
// separately in CanTransition because it is reachable from any live state.
var validTransitions = map[Status][]Status{
	StatusNew:      {StatusAnalyzed},
	StatusAnalyzed: {StatusMatched, StatusFailed},
	StatusMatched:  {StatusGenerated, StatusFailed},
	// generated, failed and skipped are terminal, with no outgoing transitions
}

// AllStatuses enumerates every valid status, in pipeline order.
var AllStatuses = []Status{
	StatusNew, StatusAnalyzed, StatusMatched,
	StatusGenerated, StatusFailed, StatusSkipped,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, v := range AllStatuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTerminal reports whether a record in this status is ever reprocessed.
func (s Status) IsTerminal() bool {
	return s == StatusGenerated || s == StatusFailed || s == StatusSkipped
}

// CanTransition returns true when moving from → to is permitted by the
// state machine.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusSkipped {
		return true
	}
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
