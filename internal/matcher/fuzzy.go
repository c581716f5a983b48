package matcher

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"worklog-reconciler/internal/models"
)

// FuzzyMatcher is the fallback association used when a description
// carries no explicit work item reference. It compares the normalized
// description against every open work item title and keeps the best
// similarity at or above the threshold.
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher builds a fuzzy matcher. The threshold must already be
// validated to [0, 1] by the caller.
func NewFuzzyMatcher(threshold float64) *FuzzyMatcher {
	return &FuzzyMatcher{threshold: threshold}
}

// Match returns the best-matching work item and its similarity score,
// or nil when nothing reaches the threshold. Completed work items are
// skipped: stale titles attract spurious matches. Iteration is in ID
// order so ties resolve to the lowest ID deterministically.
func (f *FuzzyMatcher) Match(description string, catalog map[int]*models.WorkItem) (*models.WorkItem, float64) {
	normalized := Normalize(description)
	if normalized == "" {
		return nil, 0
	}

	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var best *models.WorkItem
	bestScore := 0.0

	for _, id := range ids {
		item := catalog[id]
		if item == nil || item.IsCompleted() {
			continue
		}

		title := Normalize(item.Title)
		if title == "" {
			continue
		}

		score := Similarity(normalized, title)

		// Containment either way is strong evidence even when the
		// strings differ a lot in length.
		if strings.Contains(normalized, title) || strings.Contains(title, normalized) {
			if score < 0.8 {
				score = 0.8
			}
		}

		if score > bestScore && score >= f.threshold {
			bestScore = score
			best = item
		}
	}

	return best, bestScore
}

// Normalize lowercases s and collapses every run of non-alphanumeric
// characters to a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}

	return b.String()
}

// Similarity computes a normalized edit-distance ratio in [0, 1]:
// 1 means identical, 0 means nothing in common.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)

	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}

	return 1 - float64(distance)/float64(longest)
}
