package interfaces

import (
	"context"
	"time"

	"worklog-reconciler/internal/models"
)

// TimeEntrySource supplies time entries for a date range, optionally
// filtered to specific users. Entries come back in source order.
type TimeEntrySource interface {
	GetTimeEntries(ctx context.Context, from, to time.Time, userIDs []string) ([]models.TimeEntry, error)
	GetUsers(ctx context.Context) ([]models.UserData, error)
}

// WorkItemCatalog resolves work item IDs to work items. IDs that do not
// exist are simply absent from the returned map, never errors.
type WorkItemCatalog interface {
	GetWorkItems(ctx context.Context, ids []int) (map[int]*models.WorkItem, error)
}

// Storage persists the work item cache and report run history.
type Storage interface {
	SaveWorkItems(items map[int]*models.WorkItem) error
	LoadWorkItems(ids []int) (map[int]*models.WorkItem, error)
	SaveRunSummary(summary *models.RunSummary) error
	LoadRunSummaries() ([]*models.RunSummary, error)
	LastRefresh() (string, error)
	Close() error
}

// Renderer serializes one reconciliation run to a report file and
// returns the path it wrote.
type Renderer interface {
	Render(outputDir string, summary *models.RunSummary, records []models.MatchedRecord) (string, error)
	Format() string
}

// WebService is the HTTP front end for status and report triggering.
type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
