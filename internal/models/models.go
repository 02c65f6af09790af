package models

import (
	"time"

	"github.com/versebench/versebench/internal/eval/metrics"
)

// RunStatus is the lifecycle state of a benchmark run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Done reports whether the run has reached a final state
func (s RunStatus) Done() bool {
	return s == RunStatusCompleted || s == RunStatusCancelled || s == RunStatusFailed
}

// Run represents one benchmark run of a model over a set of chapters
type Run struct {
	ID               string                `json:"id" yaml:"id"`
	Provider         string                `json:"provider" yaml:"provider"`
	Model            string                `json:"model" yaml:"model"`
	Translation      string                `json:"translation,omitempty" yaml:"translation,omitempty"`
	CanonicalProfile string                `json:"canonical_profile" yaml:"canonical_profile"`
	OutputProfile    string                `json:"output_profile" yaml:"output_profile"`
	Status           RunStatus             `json:"status" yaml:"status"`
	Error            string                `json:"error,omitempty" yaml:"error,omitempty"`
	Chapters         []ChapterResult       `json:"chapters" yaml:"chapters"`
	Summary          metrics.ResultSummary `json:"summary" yaml:"summary"`
	VerseSummary     metrics.ResultSummary `json:"verse_summary" yaml:"verse_summary"`
	Verdicts         metrics.VerdictCounts `json:"verdicts" yaml:"verdicts"`
	StartedAt        time.Time             `json:"started_at" yaml:"started_at"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// AllVerses flattens the verse results of every chapter
func (r *Run) AllVerses() []VerseResult {
	var out []VerseResult
	for _, ch := range r.Chapters {
		out = append(out, ch.Verses...)
	}
	return out
}

// ChapterResult holds the scoring of one chapter response
type ChapterResult struct {
	Book          string                `json:"book" yaml:"book"`
	BookIndex     int                   `json:"book_index" yaml:"book_index"`
	Chapter       int                   `json:"chapter" yaml:"chapter"`
	Response      string                `json:"response,omitempty" yaml:"response,omitempty"`
	Strategy      string                `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	HashMatch     bool                  `json:"hash_match" yaml:"hash_match"`
	FidelityScore float64               `json:"fidelity_score" yaml:"fidelity_score"`
	Diff          metrics.DiffCounts    `json:"diff" yaml:"diff"`
	Verdict       metrics.Verdict       `json:"verdict" yaml:"verdict"`
	Summary       metrics.ResultSummary `json:"summary" yaml:"summary"`
	Verses        []VerseResult         `json:"verses" yaml:"verses"`
	MissingVerses []int                 `json:"missing_verses,omitempty" yaml:"missing_verses,omitempty"`
	ExtraVerses   []int                 `json:"extra_verses,omitempty" yaml:"extra_verses,omitempty"`
	Unmatched     []string              `json:"unmatched_text,omitempty" yaml:"unmatched_text,omitempty"`
	Warnings      []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error         string                `json:"error,omitempty" yaml:"error,omitempty"`
	Duration      time.Duration         `json:"duration_ns" yaml:"duration"`
}

// IsHashMatch implements metrics.Scored
func (c ChapterResult) IsHashMatch() bool { return c.HashMatch }

// Fidelity implements metrics.Scored
func (c ChapterResult) Fidelity() float64 { return c.FidelityScore }

// VerseResult holds the scoring of one verse within a chapter
type VerseResult struct {
	VerseID        int                `json:"verse_id" yaml:"verse_id"`
	VerseNumber    int                `json:"verse_number" yaml:"verse_number"`
	Matched        bool               `json:"matched" yaml:"matched"`
	ExtractedText  string             `json:"extracted_text" yaml:"extracted_text"`
	NormalizedText string             `json:"normalized_text" yaml:"normalized_text"`
	CanonicalText  string             `json:"canonical_text" yaml:"canonical_text"`
	HashMatch      bool               `json:"hash_match" yaml:"hash_match"`
	FidelityScore  float64            `json:"fidelity_score" yaml:"fidelity_score"`
	Diff           metrics.DiffCounts `json:"diff" yaml:"diff"`
	Verdict        metrics.Verdict    `json:"verdict" yaml:"verdict"`
}

// IsHashMatch implements metrics.Scored
func (v VerseResult) IsHashMatch() bool { return v.HashMatch }

// Fidelity implements metrics.Scored
func (v VerseResult) Fidelity() float64 { return v.FidelityScore }
