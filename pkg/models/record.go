package models

import "time"

// Platform identifies the job board a posting was collected from.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformIndeed   Platform = "indeed"
	PlatformTheHub   Platform = "thehub"
)

// Posting is one raw job posting as handed over by an ingestion source.
// The pipeline only needs these fields; source-specific pagination and
// formats stay inside the source implementations.
type Posting struct {
	Platform    Platform `json:"platform"`
	PlatformID  string   `json:"platform_id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
}

// JobRecord is one stored job posting progressing through the pipeline.
// Payload fields are populated progressively, exactly once per stage:
// RawDescription at ingest, Requirements at analyze, MatchedExperience at
// match, ArtifactPath at generate. CreatedAt is immutable once set.
type JobRecord struct {
	ID                 string                 `json:"id"`
	Platform           Platform               `json:"platform"`
	PlatformID         string                 `json:"platform_id"`
	Title              string                 `json:"title"`
	Company            string                 `json:"company"`
	URL                string                 `json:"url"`
	ContentFingerprint string                 `json:"content_fingerprint"`
	RawDescription     string                 `json:"raw_description"`
	Requirements       *ExtractedRequirements `json:"extracted_requirements,omitempty"`
	MatchedExperience  []Match                `json:"matched_experience,omitempty"`
	ArtifactPath       string                 `json:"artifact_path,omitempty"`
	FailureReason      string                 `json:"failure_reason,omitempty"`
	Status             Status                 `json:"status"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// JobType buckets the employment type extracted from a description.
type JobType string

const (
	JobTypeInternship JobType = "internship"
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeUnknown    JobType = "unknown"
)

// ExtractedRequirements is the structured result of LLM analysis of a raw
// job description. Any field may be absent; ExperienceYears is nil when the
// posting does not state one.
type ExtractedRequirements struct {
	HardSkills          []string `json:"hard_skills"`
	SoftSkills          []string `json:"soft_skills"`
	ExperienceYears     *int     `json:"experience_years,omitempty" validate:"omitempty,gte=0"`
	JobType             JobType  `json:"job_type" validate:"omitempty,oneof=internship full_time part_time contract unknown"`
	IsRemote            bool     `json:"is_remote"`
	Domain              string   `json:"domain"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
	// FitScore is an advisory 0-1 estimate of how well the posting matches
	// the candidate profile embedded in the extraction prompt.
	FitScore float64 `json:"fit_score" validate:"gte=0,lte=1"`
}

// Match references one selected experience item with its similarity score.
type Match struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// MatchResult is the ordered top-N selection for one job, descending by
// score. It is ephemeral: only the Matches slice is persisted, as the
// record's matched_experience payload.
type MatchResult struct {
	Matches []Match `json:"matches"`
}
