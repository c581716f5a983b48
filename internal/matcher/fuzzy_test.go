package matcher

import (
	"testing"

	"worklog-reconciler/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Auth Fix", "auth fix"},
		{"  fix -- login!! ", "fix login"},
		{"Sprint/12: retro (notes)", "sprint 12 retro notes"},
		{"---", ""},
		{"Café menü", "café menü"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "auth fix", "auth fix", 1},
		{"both empty", "", "", 1},
		{"one empty", "auth fix", "", 0},
		{"single edit", "auth", "autn", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFuzzyMatchExactTitle(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		11111: {ID: 11111, Title: "Fix login timeout", Type: "Bug", State: "Active"},
		22222: {ID: 22222, Title: "Quarterly planning", Type: "Task", State: "Active"},
	}

	f := NewFuzzyMatcher(0.8)
	item, score := f.Match("fix login timeout", catalog)
	if item == nil || item.ID != 11111 {
		t.Fatalf("matched %v, want 11111", item)
	}
	if score != 1 {
		t.Errorf("score = %v, want 1", score)
	}
}

func TestFuzzyMatchBelowThreshold(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		11111: {ID: 11111, Title: "Fix login timeout", Type: "Bug", State: "Active"},
	}

	f := NewFuzzyMatcher(0.8)
	if item, _ := f.Match("completely unrelated standup notes", catalog); item != nil {
		t.Errorf("matched %v, want nil below threshold", item)
	}
}

func TestFuzzyMatchSkipsCompleted(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		11111: {ID: 11111, Title: "Fix login timeout", Type: "Bug", State: "Closed"},
	}

	f := NewFuzzyMatcher(0.8)
	if item, _ := f.Match("fix login timeout", catalog); item != nil {
		t.Errorf("matched completed item %v, want nil", item)
	}
}

func TestFuzzyMatchContainmentBoost(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		11111: {ID: 11111, Title: "Login timeout", Type: "Bug", State: "Active"},
	}

	f := NewFuzzyMatcher(0.8)
	item, score := f.Match("investigating the login timeout reported by support yesterday", catalog)
	if item == nil || item.ID != 11111 {
		t.Fatalf("matched %v, want 11111 via title containment", item)
	}
	if score < 0.8 {
		t.Errorf("score = %v, want >= 0.8 containment floor", score)
	}
}

func TestFuzzyMatchTieGoesToLowestID(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		22222: {ID: 22222, Title: "Fix login timeout", Type: "Bug", State: "Active"},
		11111: {ID: 11111, Title: "Fix login timeout", Type: "Bug", State: "Active"},
	}

	f := NewFuzzyMatcher(0.8)
	for i := 0; i < 10; i++ {
		item, _ := f.Match("fix login timeout", catalog)
		if item == nil || item.ID != 11111 {
			t.Fatalf("matched %v, want lowest id 11111", item)
		}
	}
}

func TestFuzzyMatchEmptyDescription(t *testing.T) {
	catalog := map[int]*models.WorkItem{
		11111: {ID: 11111, Title: "Fix login timeout", Type: "Bug", State: "Active"},
	}

	f := NewFuzzyMatcher(0.8)
	if item, _ := f.Match("   !! ", catalog); item != nil {
		t.Errorf("matched %v for blank description, want nil", item)
	}
}
