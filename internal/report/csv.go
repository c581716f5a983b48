package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"worklog-reconciler/internal/models"
)

// CSVRenderer writes one row per matched record, the raw-data view for
// spreadsheet pivoting.
type CSVRenderer struct {
	IncludeUnmatched bool
}

func (r *CSVRenderer) Format() string { return "csv" }

func (r *CSVRenderer) Render(outputDir string, summary *models.RunSummary, records []models.MatchedRecord) (string, error) {
	path := filepath.Join(outputDir, fileName(summary, "csv"))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"date", "user", "description", "hours", "billable",
		"work_item_id", "work_item_title", "work_item_type", "work_item_state",
		"iteration", "area", "strategy", "confidence", "tags",
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range filterRecords(records, r.IncludeUnmatched) {
		workItemID := ""
		title := UnmatchedLabel
		if record.IsMatched() {
			workItemID = strconv.Itoa(*record.WorkItemID)
			title = record.WorkItemTitle
		}

		row := []string{
			record.Entry.Date(),
			record.Entry.UserName,
			record.Entry.Description,
			strconv.FormatFloat(record.Entry.Hours, 'f', 2, 64),
			strconv.FormatBool(record.Entry.Billable),
			workItemID,
			title,
			record.WorkItemType,
			record.WorkItemState,
			record.Iteration,
			record.Area,
			record.Strategy,
			strconv.FormatFloat(record.Confidence, 'f', 2, 64),
			strings.Join(record.Entry.Tags, ";"),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report %s: %w", path, err)
	}
	return path, nil
}
