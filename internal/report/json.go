package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"worklog-reconciler/internal/models"
)

// jsonDocument is the machine-readable report shape.
type jsonDocument struct {
	Summary   *models.RunSummary     `json:"summary"`
	Aggregate *Aggregate             `json:"aggregate"`
	Records   []models.MatchedRecord `json:"records"`
}

// JSONRenderer writes the full run, aggregate tables and raw records
// included, as a single JSON document.
type JSONRenderer struct {
	IncludeUnmatched bool
}

func (r *JSONRenderer) Format() string { return "json" }

func (r *JSONRenderer) Render(outputDir string, summary *models.RunSummary, records []models.MatchedRecord) (string, error) {
	doc := jsonDocument{
		Summary:   summary,
		Aggregate: Compute(records),
		Records:   filterRecords(records, r.IncludeUnmatched),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(outputDir, fileName(summary, "json"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// fileName builds the per-run report file name shared by all renderers.
func fileName(summary *models.RunSummary, ext string) string {
	return fmt.Sprintf("reconciliation_%s_%s_%s.%s",
		summary.From.Format("20060102"),
		summary.To.Format("20060102"),
		shortRunID(summary.RunID),
		ext)
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func filterRecords(records []models.MatchedRecord, includeUnmatched bool) []models.MatchedRecord {
	if includeUnmatched {
		return records
	}
	filtered := make([]models.MatchedRecord, 0, len(records))
	for _, record := range records {
		if record.IsMatched() {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
