package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"worklog-reconciler/internal/models"
)

// ExcelRenderer writes an xlsx workbook with Summary, ByPerson,
// ByWorkItem and RawData sheets.
type ExcelRenderer struct {
	IncludeUnmatched bool
}

func (r *ExcelRenderer) Format() string { return "xlsx" }

func (r *ExcelRenderer) Render(outputDir string, summary *models.RunSummary, records []models.MatchedRecord) (string, error) {
	agg := Compute(records)

	wb := excelize.NewFile()
	defer wb.Close()

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := r.writeSummary(wb, summary, agg); err != nil {
		return "", err
	}
	if err := r.writeByPerson(wb, agg, headerStyle); err != nil {
		return "", err
	}
	if err := r.writeByWorkItem(wb, agg, headerStyle); err != nil {
		return "", err
	}
	if err := r.writeRawData(wb, filterRecords(records, r.IncludeUnmatched), headerStyle); err != nil {
		return "", err
	}

	// Drop the default sheet and make Summary first
	wb.DeleteSheet("Sheet1")
	if index, err := wb.GetSheetIndex("Summary"); err == nil {
		wb.SetActiveSheet(index)
	}

	path := filepath.Join(outputDir, fileName(summary, "xlsx"))
	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

func (r *ExcelRenderer) writeSummary(wb *excelize.File, summary *models.RunSummary, agg *Aggregate) error {
	const sheet = "Summary"
	if _, err := wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Worklog Reconciliation Report"},
		{},
		{"Period", fmt.Sprintf("%s – %s", summary.From.Format("2006-01-02"), summary.To.Format("2006-01-02"))},
		{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04")},
		{"Run", summary.RunID},
		{},
		{"Time entries", agg.TotalEntries},
		{"Matched entries", agg.MatchedEntries},
		{"Unmatched entries", agg.UnmatchedEntries},
		{"Match rate", fmt.Sprintf("%.1f%%", agg.MatchRate*100)},
		{"Total hours", agg.TotalHours},
		{"Matched hours", agg.MatchedHours},
		{"Unmatched hours", agg.UnmatchedHours},
	}
	return writeRows(wb, sheet, rows, 1)
}

func (r *ExcelRenderer) writeByPerson(wb *excelize.File, agg *Aggregate, headerStyle int) error {
	const sheet = "ByPerson"
	if _, err := wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Person", "Entries", "Hours", "Matched Hours", "Unmatched Hours"},
	}
	for _, person := range agg.ByPerson {
		rows = append(rows, []interface{}{
			person.UserName, person.Entries, person.Hours, person.MatchedHours, person.UnmatchedHours,
		})
	}
	if err := writeRows(wb, sheet, rows, 1); err != nil {
		return err
	}
	return wb.SetCellStyle(sheet, "A1", "E1", headerStyle)
}

func (r *ExcelRenderer) writeByWorkItem(wb *excelize.File, agg *Aggregate, headerStyle int) error {
	const sheet = "ByWorkItem"
	if _, err := wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Work Item", "Title", "Type", "State", "Entries", "Hours"},
	}
	for _, item := range agg.ByWorkItem {
		id := interface{}(item.WorkItemID)
		if item.WorkItemID == 0 {
			id = ""
		}
		rows = append(rows, []interface{}{id, item.Title, item.Type, item.State, item.Entries, item.Hours})
	}
	if err := writeRows(wb, sheet, rows, 1); err != nil {
		return err
	}
	return wb.SetCellStyle(sheet, "A1", "F1", headerStyle)
}

func (r *ExcelRenderer) writeRawData(wb *excelize.File, records []models.MatchedRecord, headerStyle int) error {
	const sheet = "RawData"
	if _, err := wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Date", "Person", "Description", "Hours", "Billable",
			"Work Item", "Title", "Type", "State", "Iteration", "Area",
			"Strategy", "Confidence", "Tags"},
	}
	for i := range records {
		record := &records[i]

		id := interface{}("")
		title := UnmatchedLabel
		if record.IsMatched() {
			id = *record.WorkItemID
			title = record.WorkItemTitle
		}

		rows = append(rows, []interface{}{
			record.Entry.Date(),
			record.Entry.UserName,
			record.Entry.Description,
			record.Entry.Hours,
			record.Entry.Billable,
			id,
			title,
			record.WorkItemType,
			record.WorkItemState,
			record.Iteration,
			record.Area,
			record.Strategy,
			record.Confidence,
			strings.Join(record.Entry.Tags, "; "),
		})
	}
	if err := writeRows(wb, sheet, rows, 1); err != nil {
		return err
	}
	return wb.SetCellStyle(sheet, "A1", "N1", headerStyle)
}

func writeRows(wb *excelize.File, sheet string, rows [][]interface{}, startRow int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", startRow+i, sheet, err)
		}
	}
	return nil
}
