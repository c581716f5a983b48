package services

import (
	"path/filepath"
	"testing"
	"time"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/models"
)

func newTestStorage(t *testing.T, ttlHours int) interfaces.Storage {
	t.Helper()

	store, err := NewStorage(&common.StorageConfig{
		DatabasePath:  filepath.Join(t.TempDir(), "test.db"),
		CacheTTLHours: ttlHours,
		RetentionDays: 90,
	})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWorkItemCacheRoundTrip(t *testing.T) {
	store := newTestStorage(t, 2)

	items := map[int]*models.WorkItem{
		12345: {ID: 12345, Title: "Auth fix", Type: "Bug", State: "Active"},
		22222: {ID: 22222, Title: "Migration", Type: "Task", State: "New"},
	}
	if err := store.SaveWorkItems(items); err != nil {
		t.Fatalf("SaveWorkItems: %v", err)
	}

	loaded, err := store.LoadWorkItems([]int{12345, 22222, 99999})
	if err != nil {
		t.Fatalf("LoadWorkItems: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d items, want 2 (unknown id absent, not an error)", len(loaded))
	}
	if loaded[12345].Title != "Auth fix" || loaded[22222].Type != "Task" {
		t.Errorf("loaded items do not match saved: %+v", loaded)
	}
}

func TestWorkItemCacheExpiry(t *testing.T) {
	// Zero TTL means everything saved before the read is already stale
	store := newTestStorage(t, 0)

	items := map[int]*models.WorkItem{
		12345: {ID: 12345, Title: "Auth fix", Type: "Bug", State: "Active"},
	}
	if err := store.SaveWorkItems(items); err != nil {
		t.Fatalf("SaveWorkItems: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	loaded, err := store.LoadWorkItems([]int{12345})
	if err != nil {
		t.Fatalf("LoadWorkItems: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("got %d items, want 0 past the TTL", len(loaded))
	}
}

func TestRunSummaryHistory(t *testing.T) {
	store := newTestStorage(t, 2)

	older := &models.RunSummary{
		RunID:       "run-older",
		GeneratedAt: time.Now().Add(-time.Hour),
		From:        time.Now().AddDate(0, 0, -14),
		To:          time.Now().AddDate(0, 0, -7),
	}
	newer := &models.RunSummary{
		RunID:       "run-newer",
		GeneratedAt: time.Now(),
		From:        time.Now().AddDate(0, 0, -7),
		To:          time.Now(),
	}

	for _, s := range []*models.RunSummary{older, newer} {
		if err := store.SaveRunSummary(s); err != nil {
			t.Fatalf("SaveRunSummary(%s): %v", s.RunID, err)
		}
	}

	summaries, err := store.LoadRunSummaries()
	if err != nil {
		t.Fatalf("LoadRunSummaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].RunID != "run-newer" || summaries[1].RunID != "run-older" {
		t.Errorf("order = [%s, %s], want newest first", summaries[0].RunID, summaries[1].RunID)
	}
}

func TestLastRefresh(t *testing.T) {
	store := newTestStorage(t, 2)

	got, err := store.LastRefresh()
	if err != nil {
		t.Fatalf("LastRefresh: %v", err)
	}
	if got != "" {
		t.Errorf("LastRefresh before any save = %q, want empty", got)
	}

	if err := store.SaveWorkItems(map[int]*models.WorkItem{
		12345: {ID: 12345, Title: "Auth fix", Type: "Bug", State: "Active"},
	}); err != nil {
		t.Fatalf("SaveWorkItems: %v", err)
	}

	got, err = store.LastRefresh()
	if err != nil {
		t.Fatalf("LastRefresh: %v", err)
	}
	if got == "" {
		t.Error("LastRefresh after save is empty, want a timestamp")
	}
}
