package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"worklog-reconciler/internal/models"
)

func testSummary() *models.RunSummary {
	return &models.RunSummary{
		RunID:            "3f2a9c61-0000-0000-0000-000000000000",
		From:             time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		To:               time.Date(2026, 8, 16, 23, 59, 59, 0, time.UTC),
		GeneratedAt:      time.Date(2026, 8, 17, 8, 30, 0, 0, time.UTC),
		TotalEntries:     4,
		MatchedEntries:   3,
		UnmatchedEntries: 1,
		TotalHours:       7,
		MatchRate:        0.75,
	}
}

func TestFileName(t *testing.T) {
	got := fileName(testSummary(), "json")
	want := "reconciliation_20260810_20260816_3f2a9c61.json"
	if got != want {
		t.Errorf("fileName = %s, want %s", got, want)
	}
}

func TestJSONRendererRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := &JSONRenderer{IncludeUnmatched: true}

	path, err := r.Render(dir, testSummary(), testRecords())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Records) != 4 {
		t.Errorf("got %d records, want 4", len(doc.Records))
	}
	if doc.Aggregate == nil || doc.Aggregate.TotalHours != 7 {
		t.Errorf("aggregate = %+v, want total hours 7", doc.Aggregate)
	}
}

func TestJSONRendererExcludesUnmatched(t *testing.T) {
	dir := t.TempDir()
	r := &JSONRenderer{IncludeUnmatched: false}

	path, err := r.Render(dir, testSummary(), testRecords())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, _ := os.ReadFile(path)
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.Records) != 3 {
		t.Errorf("got %d records, want 3 matched only", len(doc.Records))
	}
	// The aggregate still covers all entries
	if doc.Aggregate.TotalEntries != 4 {
		t.Errorf("aggregate entries = %d, want 4", doc.Aggregate.TotalEntries)
	}
}

func TestCSVRenderer(t *testing.T) {
	dir := t.TempDir()
	r := &CSVRenderer{IncludeUnmatched: true}

	path, err := r.Render(dir, testSummary(), testRecords())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header plus 4 records", len(rows))
	}
	if rows[0][0] != "date" || rows[0][5] != "work_item_id" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	// Last record is the unmatched one
	last := rows[4]
	if last[5] != "" || last[6] != UnmatchedLabel {
		t.Errorf("unmatched row = %v, want empty id and %q title", last, UnmatchedLabel)
	}
}

func TestHTMLRenderer(t *testing.T) {
	dir := t.TempDir()
	r := &HTMLRenderer{IncludeUnmatched: true}

	path, err := r.Render(dir, testSummary(), testRecords())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	page := string(data)

	for _, want := range []string{"Worklog Reconciliation Report", "#12345 Auth fix", "Alex", "Unmatched"} {
		if !strings.Contains(page, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestExcelRenderer(t *testing.T) {
	dir := t.TempDir()
	r := &ExcelRenderer{IncludeUnmatched: true}

	path, err := r.Render(dir, testSummary(), testRecords())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook file is empty")
	}
	if !strings.HasSuffix(path, ".xlsx") {
		t.Errorf("path = %s, want .xlsx", path)
	}
}
