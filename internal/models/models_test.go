package models

import (
	"testing"
	"time"
)

func TestTimeEntryValid(t *testing.T) {
	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry TimeEntry
		want  bool
	}{
		{"normal", TimeEntry{Start: start, End: start.Add(time.Hour), Hours: 1}, true},
		{"zero duration", TimeEntry{Start: start, End: start, Hours: 0}, true},
		{"end before start", TimeEntry{Start: start, End: start.Add(-time.Minute), Hours: 1}, false},
		{"negative hours", TimeEntry{Start: start, End: start.Add(time.Hour), Hours: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkItemIsCompleted(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"Active", false},
		{"New", false},
		{"Closed", true},
		{"closed", true},
		{"Resolved", true},
		{"Done", true},
		{"Removed", true},
		{"", false},
	}

	for _, tt := range tests {
		item := WorkItem{State: tt.state}
		if got := item.IsCompleted(); got != tt.want {
			t.Errorf("IsCompleted(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestMatchedRecordConstructors(t *testing.T) {
	entry := TimeEntry{ID: "e1", Description: "#12345 work"}
	item := &WorkItem{
		ID:            12345,
		Title:         "Auth fix",
		Type:          "Bug",
		State:         "Active",
		IterationPath: `Contoso\Sprint 12`,
		AreaPath:      `Contoso\Identity`,
	}

	m := Matched(entry, item, StrategyExplicit, 0.9)
	if !m.IsMatched() || *m.WorkItemID != 12345 {
		t.Fatalf("Matched record = %+v", m)
	}
	if m.Iteration != "Sprint 12" || m.Area != "Identity" {
		t.Errorf("path fields = %q/%q, want trailing segments", m.Iteration, m.Area)
	}

	u := Unmatched(entry)
	if u.IsMatched() || u.Strategy != StrategyNone {
		t.Fatalf("Unmatched record = %+v", u)
	}
	if u.Entry.ID != "e1" {
		t.Errorf("entry not carried: %+v", u.Entry)
	}
}
