package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/matcher"
	"worklog-reconciler/internal/models"
	"worklog-reconciler/internal/report"
)

// ProgressFunc receives run progress events for live status streaming.
// A nil ProgressFunc disables streaming.
type ProgressFunc func(eventType string, data interface{})

// Reconciler drives one reconciliation run end to end: fetch time
// entries, resolve the referenced work items, match, render reports and
// persist the run summary.
type Reconciler struct {
	config   *common.Config
	source   interfaces.TimeEntrySource
	catalog  interfaces.WorkItemCatalog
	storage  interfaces.Storage
	matcher  *matcher.Matcher
	logger   arbor.ILogger
	progress ProgressFunc
}

// NewReconciler wires the reconciliation pipeline from configuration.
func NewReconciler(cfg *common.Config, source interfaces.TimeEntrySource, catalog interfaces.WorkItemCatalog, storage interfaces.Storage, logger arbor.ILogger) (*Reconciler, error) {
	m, err := matcher.New(matcher.Options{
		MinID:          cfg.Matcher.MinWorkItemID,
		MaxID:          cfg.Matcher.MaxWorkItemID,
		FuzzyEnabled:   cfg.Matcher.FuzzyEnabled,
		FuzzyThreshold: cfg.Matcher.FuzzyThreshold,
		TypePreference: cfg.Matcher.TypePreference,
		Workers:        cfg.Matcher.Workers,
	})
	if err != nil {
		return nil, common.WrapError(err, common.ErrorTypeMatching, "matcher_init", "failed to build matcher")
	}

	return &Reconciler{
		config:  cfg,
		source:  source,
		catalog: catalog,
		storage: storage,
		matcher: m,
		logger:  logger,
	}, nil
}

// SetProgress attaches a progress sink. Must be called before Run.
func (r *Reconciler) SetProgress(fn ProgressFunc) {
	r.progress = fn
}

func (r *Reconciler) notify(eventType string, data interface{}) {
	if r.progress != nil {
		r.progress(eventType, data)
	}
}

// Run reconciles the date range [from, to] and returns the run summary
// with the matched records behind it. When userIDs is empty the whole
// workspace is reconciled.
func (r *Reconciler) Run(ctx context.Context, from, to time.Time, userIDs []string) (*models.RunSummary, []models.MatchedRecord, error) {
	runID := uuid.NewString()
	started := time.Now()

	r.logger.Info().
		Str("run_id", runID).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Starting reconciliation run")
	r.notify("run_started", map[string]interface{}{"run_id": runID})

	entries, err := r.source.GetTimeEntries(ctx, from, to, userIDs)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Info().Int("entries", len(entries)).Msg("Time entries fetched")
	r.notify("entries_fetched", map[string]interface{}{"run_id": runID, "count": len(entries)})

	catalog, err := r.resolveWorkItems(ctx, entries)
	if err != nil {
		return nil, nil, err
	}
	r.notify("work_items_resolved", map[string]interface{}{"run_id": runID, "count": len(catalog)})

	records, diagnostics := r.matcher.Match(ctx, entries, catalog)
	for _, d := range diagnostics {
		r.logger.Warn().
			Str("entry_id", d.EntryID).
			Str("reason", d.Reason).
			Msg("Time entry rejected")
	}

	summary := r.buildSummary(runID, from, to, records, diagnostics)

	if err := r.renderReports(summary, records); err != nil {
		return nil, nil, err
	}

	if err := r.storage.SaveRunSummary(summary); err != nil {
		return nil, nil, common.WrapError(err, common.ErrorTypeStorage, "run_save", "failed to persist run summary").
			WithContext("run_id", runID)
	}

	r.logger.Info().
		Str("run_id", runID).
		Int("matched", summary.MatchedEntries).
		Int("unmatched", summary.UnmatchedEntries).
		Dur("elapsed", time.Since(started)).
		Msg("Reconciliation run complete")
	r.notify("run_complete", summary)

	return summary, records, nil
}

// resolveWorkItems gathers every work item referenced by the entries,
// serving from the cache first and fetching only the remainder.
func (r *Reconciler) resolveWorkItems(ctx context.Context, entries []models.TimeEntry) (map[int]*models.WorkItem, error) {
	ids := r.matcher.ExtractIDs(entries)

	cached, err := r.storage.LoadWorkItems(ids)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Work item cache read failed, fetching all")
		cached = make(map[int]*models.WorkItem)
	}

	var missing []int
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		r.logger.Info().
			Int("cached", len(cached)).
			Int("fetching", len(missing)).
			Msg("Resolving work items")

		fetched, err := r.catalog.GetWorkItems(ctx, missing)
		if err != nil {
			return nil, err
		}
		if err := r.storage.SaveWorkItems(fetched); err != nil {
			r.logger.Warn().Err(err).Msg("Work item cache write failed")
		}
		for id, item := range fetched {
			cached[id] = item
		}
	}

	return cached, nil
}

func (r *Reconciler) buildSummary(runID string, from, to time.Time, records []models.MatchedRecord, diagnostics []matcher.Diagnostic) *models.RunSummary {
	agg := report.Compute(records)

	summary := &models.RunSummary{
		RunID:            runID,
		From:             from,
		To:               to,
		GeneratedAt:      time.Now(),
		TotalEntries:     agg.TotalEntries,
		MatchedEntries:   agg.MatchedEntries,
		UnmatchedEntries: agg.UnmatchedEntries,
		TotalHours:       agg.TotalHours,
		MatchRate:        agg.MatchRate,
	}
	for _, d := range diagnostics {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("entry %s rejected: %s", d.EntryID, d.Reason))
	}
	return summary
}

// renderReports writes every configured format and records the output
// paths on the summary.
func (r *Reconciler) renderReports(summary *models.RunSummary, records []models.MatchedRecord) error {
	if err := os.MkdirAll(r.config.Report.OutputDir, 0755); err != nil {
		return common.WrapError(err, common.ErrorTypeReport, "output_dir", "failed to create report output directory")
	}

	for _, format := range r.config.Report.Formats {
		renderer, err := newRenderer(format, r.config.Report.IncludeUnmatched)
		if err != nil {
			return err
		}

		path, err := renderer.Render(r.config.Report.OutputDir, summary, records)
		if err != nil {
			return common.WrapError(err, common.ErrorTypeReport, "render", "failed to render report").
				WithContext("format", format)
		}

		summary.OutputFiles = append(summary.OutputFiles, path)
		r.logger.Info().Str("format", format).Str("path", path).Msg("Report written")
	}

	return nil
}

func newRenderer(format string, includeUnmatched bool) (interfaces.Renderer, error) {
	switch format {
	case "json":
		return &report.JSONRenderer{IncludeUnmatched: includeUnmatched}, nil
	case "csv":
		return &report.CSVRenderer{IncludeUnmatched: includeUnmatched}, nil
	case "html":
		return &report.HTMLRenderer{IncludeUnmatched: includeUnmatched}, nil
	case "xlsx":
		return &report.ExcelRenderer{IncludeUnmatched: includeUnmatched}, nil
	default:
		return nil, common.NewReportError("unknown_format", fmt.Sprintf("unknown report format: %s", format))
	}
}
