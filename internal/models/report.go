package models

import "time"

// RunSummary captures the outcome of one reconciliation run. Summaries
// are persisted to storage so the report history survives restarts.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalEntries     int     `json:"total_entries"`
	MatchedEntries   int     `json:"matched_entries"`
	UnmatchedEntries int     `json:"unmatched_entries"`
	TotalHours       float64 `json:"total_hours"`
	MatchRate        float64 `json:"match_rate"`

	OutputFiles []string `json:"output_files,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}
