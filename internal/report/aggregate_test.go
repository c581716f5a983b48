package report

import (
	"testing"
	"time"

	"worklog-reconciler/internal/models"
)

func entry(id, user, date string, hours float64) models.TimeEntry {
	start, _ := time.Parse("2006-01-02", date)
	return models.TimeEntry{
		ID:       id,
		UserName: user,
		Start:    start,
		End:      start.Add(time.Duration(hours * float64(time.Hour))),
		Hours:    hours,
	}
}

func matched(e models.TimeEntry, id int, title string) models.MatchedRecord {
	item := &models.WorkItem{ID: id, Title: title, Type: "Bug", State: "Active"}
	return models.Matched(e, item, models.StrategyExplicit, 0.9)
}

func testRecords() []models.MatchedRecord {
	return []models.MatchedRecord{
		matched(entry("e1", "Alex", "2026-08-10", 2), 12345, "Auth fix"),
		matched(entry("e2", "Blair", "2026-08-10", 3), 12345, "Auth fix"),
		matched(entry("e3", "Alex", "2026-08-11", 1.5), 22222, "Migration"),
		models.Unmatched(entry("e4", "Alex", "2026-08-11", 0.5)),
	}
}

func TestComputeTotals(t *testing.T) {
	agg := Compute(testRecords())

	if agg.TotalEntries != 4 || agg.MatchedEntries != 3 || agg.UnmatchedEntries != 1 {
		t.Fatalf("counts = %d/%d/%d, want 4/3/1", agg.TotalEntries, agg.MatchedEntries, agg.UnmatchedEntries)
	}
	if agg.TotalHours != 7 {
		t.Errorf("total hours = %v, want 7", agg.TotalHours)
	}
	if agg.MatchedHours != 6.5 || agg.UnmatchedHours != 0.5 {
		t.Errorf("matched/unmatched hours = %v/%v, want 6.5/0.5", agg.MatchedHours, agg.UnmatchedHours)
	}
	if agg.MatchRate != 0.75 {
		t.Errorf("match rate = %v, want 0.75", agg.MatchRate)
	}
}

func TestComputeByPerson(t *testing.T) {
	agg := Compute(testRecords())

	if len(agg.ByPerson) != 2 {
		t.Fatalf("got %d people, want 2", len(agg.ByPerson))
	}
	// Sorted by name
	if agg.ByPerson[0].UserName != "Alex" || agg.ByPerson[1].UserName != "Blair" {
		t.Fatalf("person order = [%s, %s], want [Alex, Blair]", agg.ByPerson[0].UserName, agg.ByPerson[1].UserName)
	}

	alex := agg.ByPerson[0]
	if alex.Entries != 3 || alex.Hours != 4 {
		t.Errorf("Alex = %+v, want 3 entries / 4 hours", alex)
	}
	if alex.MatchedHours != 3.5 || alex.UnmatchedHours != 0.5 {
		t.Errorf("Alex hours split = %v/%v, want 3.5/0.5", alex.MatchedHours, alex.UnmatchedHours)
	}
}

func TestComputeByWorkItemUnmatchedBucketLast(t *testing.T) {
	agg := Compute(testRecords())

	if len(agg.ByWorkItem) != 3 {
		t.Fatalf("got %d work item rows, want 3", len(agg.ByWorkItem))
	}
	if agg.ByWorkItem[0].WorkItemID != 12345 || agg.ByWorkItem[1].WorkItemID != 22222 {
		t.Errorf("work item order = [%d, %d], want ascending ids", agg.ByWorkItem[0].WorkItemID, agg.ByWorkItem[1].WorkItemID)
	}

	last := agg.ByWorkItem[2]
	if last.WorkItemID != 0 || last.Title != UnmatchedLabel {
		t.Errorf("last bucket = %+v, want the unmatched bucket", last)
	}
	if last.Hours != 0.5 {
		t.Errorf("unmatched bucket hours = %v, want 0.5", last.Hours)
	}
}

func TestComputeByDay(t *testing.T) {
	agg := Compute(testRecords())

	if len(agg.ByDay) != 2 {
		t.Fatalf("got %d days, want 2", len(agg.ByDay))
	}
	if agg.ByDay[0].Date != "2026-08-10" || agg.ByDay[1].Date != "2026-08-11" {
		t.Errorf("day order = [%s, %s], want chronological", agg.ByDay[0].Date, agg.ByDay[1].Date)
	}
	if agg.ByDay[0].Hours != 5 || agg.ByDay[1].Hours != 2 {
		t.Errorf("day hours = %v/%v, want 5/2", agg.ByDay[0].Hours, agg.ByDay[1].Hours)
	}
}

func TestComputeEmpty(t *testing.T) {
	agg := Compute(nil)

	if agg.TotalEntries != 0 || agg.MatchRate != 0 {
		t.Errorf("empty aggregate = %+v, want zeros", agg)
	}
}
