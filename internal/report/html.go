package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"worklog-reconciler/internal/models"
)

// HTMLRenderer writes a self-contained report page: summary cards plus
// per-person, per-work-item and per-day tables.
type HTMLRenderer struct {
	IncludeUnmatched bool
}

func (r *HTMLRenderer) Format() string { return "html" }

type htmlData struct {
	Summary   *models.RunSummary
	Aggregate *Aggregate
	Rows      []htmlRow
}

// htmlRow is the flattened per-entry view the template iterates over.
type htmlRow struct {
	Date        string
	User        string
	Description string
	Hours       float64
	WorkItem    string
	Strategy    string
	Unmatched   bool
}

func toRows(records []models.MatchedRecord) []htmlRow {
	rows := make([]htmlRow, 0, len(records))
	for i := range records {
		record := &records[i]
		row := htmlRow{
			Date:        record.Entry.Date(),
			User:        record.Entry.UserName,
			Description: record.Entry.Description,
			Hours:       record.Entry.Hours,
			Strategy:    record.Strategy,
			Unmatched:   !record.IsMatched(),
		}
		if record.IsMatched() {
			row.WorkItem = fmt.Sprintf("#%d %s", *record.WorkItemID, record.WorkItemTitle)
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *HTMLRenderer) Render(outputDir string, summary *models.RunSummary, records []models.MatchedRecord) (string, error) {
	path := filepath.Join(outputDir, fileName(summary, "html"))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer file.Close()

	data := htmlData{
		Summary:   summary,
		Aggregate: Compute(records),
		Rows:      toRows(filterRecords(records, r.IncludeUnmatched)),
	}

	if err := reportTemplate.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to render report %s: %w", path, err)
	}
	return path, nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"hours": func(h float64) string { return fmt.Sprintf("%.2f", h) },
	"pct":   func(r float64) string { return fmt.Sprintf("%.1f%%", r*100) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Worklog Reconciliation Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #1f2430; }
  h1 { font-size: 1.5rem; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 1rem; margin: 1.5rem 0; }
  .card { background: #f4f6fa; border-radius: 8px; padding: 1rem; }
  .card .value { font-size: 1.6rem; font-weight: 600; }
  .card .label { color: #667085; font-size: 0.85rem; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0 2rem; }
  th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #e4e7ec; font-size: 0.9rem; }
  th { background: #f9fafb; }
  td.num, th.num { text-align: right; }
  .unmatched { color: #b42318; }
</style>
</head>
<body>
<h1>Worklog Reconciliation Report</h1>
<p>{{ .Summary.From.Format "2006-01-02" }} &ndash; {{ .Summary.To.Format "2006-01-02" }},
generated {{ .Summary.GeneratedAt.Format "2006-01-02 15:04" }} (run {{ .Summary.RunID }})</p>

<div class="cards">
  <div class="card"><div class="value">{{ .Aggregate.TotalEntries }}</div><div class="label">Time entries</div></div>
  <div class="card"><div class="value">{{ hours .Aggregate.TotalHours }}</div><div class="label">Total hours</div></div>
  <div class="card"><div class="value">{{ pct .Aggregate.MatchRate }}</div><div class="label">Match rate</div></div>
  <div class="card"><div class="value">{{ hours .Aggregate.UnmatchedHours }}</div><div class="label">Unmatched hours</div></div>
</div>

<h2>By person</h2>
<table>
<tr><th>Person</th><th class="num">Entries</th><th class="num">Hours</th><th class="num">Matched</th><th class="num">Unmatched</th></tr>
{{ range .Aggregate.ByPerson }}
<tr><td>{{ .UserName }}</td><td class="num">{{ .Entries }}</td><td class="num">{{ hours .Hours }}</td><td class="num">{{ hours .MatchedHours }}</td><td class="num">{{ hours .UnmatchedHours }}</td></tr>
{{ end }}
</table>

<h2>By work item</h2>
<table>
<tr><th>ID</th><th>Title</th><th>Type</th><th>State</th><th class="num">Entries</th><th class="num">Hours</th></tr>
{{ range .Aggregate.ByWorkItem }}
<tr>{{ if eq .WorkItemID 0 }}<td class="unmatched">&mdash;</td><td class="unmatched">{{ .Title }}</td>{{ else }}<td>{{ .WorkItemID }}</td><td>{{ .Title }}</td>{{ end }}<td>{{ .Type }}</td><td>{{ .State }}</td><td class="num">{{ .Entries }}</td><td class="num">{{ hours .Hours }}</td></tr>
{{ end }}
</table>

<h2>By day</h2>
<table>
<tr><th>Date</th><th class="num">Entries</th><th class="num">Hours</th></tr>
{{ range .Aggregate.ByDay }}
<tr><td>{{ .Date }}</td><td class="num">{{ .Entries }}</td><td class="num">{{ hours .Hours }}</td></tr>
{{ end }}
</table>

<h2>Entries</h2>
<table>
<tr><th>Date</th><th>Person</th><th>Description</th><th class="num">Hours</th><th>Work item</th><th>Strategy</th></tr>
{{ range .Rows }}
<tr><td>{{ .Date }}</td><td>{{ .User }}</td><td>{{ .Description }}</td><td class="num">{{ hours .Hours }}</td>{{ if .Unmatched }}<td class="unmatched">Unmatched</td>{{ else }}<td>{{ .WorkItem }}</td>{{ end }}<td>{{ .Strategy }}</td></tr>
{{ end }}
</table>
</body>
</html>
`))
