package matcher

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Candidate is a work item ID extracted from one description, annotated
// with the pattern that first claimed it. Candidates are unique by ID
// within a single extraction.
type Candidate struct {
	ID       int
	Pattern  string
	Priority int
	Offset   int // byte offset of the match in the description
}

// ContextValidator decides whether a weak-evidence match (bare number)
// should be kept. It receives the full text and the match bounds.
type ContextValidator func(text string, start, end int) bool

// Extractor scans descriptions for work item references. The pattern
// list is fixed at construction and shared read-only across workers.
type Extractor struct {
	patterns []Pattern
	minID    int
	maxID    int
	validate ContextValidator
}

// NewExtractor builds an extractor over the given patterns, ordered by
// priority. IDs outside [minID, maxID] are discarded. A nil validator
// falls back to the default contextual check for bare numbers.
func NewExtractor(patterns []Pattern, minID, maxID int, validate ContextValidator) *Extractor {
	ordered := make([]Pattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	if validate == nil {
		validate = defaultContextValidator
	}

	return &Extractor{
		patterns: ordered,
		minID:    minID,
		maxID:    maxID,
		validate: validate,
	}
}

// Extract returns the deduplicated candidates found in text, in order
// of first appearance. Extraction never fails: empty or malformed text
// yields an empty slice. The first pattern (in priority order) to claim
// a numeric value wins; later patterns never re-emit the same value.
func (e *Extractor) Extract(text string) []Candidate {
	if text == "" {
		return nil
	}
	text = strings.ToValidUTF8(text, "")

	seen := make(map[int]bool)
	var candidates []Candidate

	for _, pattern := range e.patterns {
		matches := pattern.Regexp.FindAllStringSubmatchIndex(text, -1)
		for _, match := range matches {
			if len(match) < 4 || match[2] < 0 {
				continue
			}
			start, end := match[2], match[3]

			id, err := strconv.Atoi(text[start:end])
			if err != nil {
				continue
			}
			if id < e.minID || id > e.maxID {
				continue
			}
			if seen[id] {
				continue
			}
			if pattern.RequiresValidation && !e.validate(text, start, end) {
				continue
			}

			seen[id] = true
			candidates = append(candidates, Candidate{
				ID:       id,
				Pattern:  pattern.Name,
				Priority: pattern.Priority,
				Offset:   start,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Offset < candidates[j].Offset
	})

	return candidates
}

// defaultContextValidator rejects bare numbers whose immediate context
// marks them as something other than a work item reference: currency
// amounts, decimal fractions, percentages and duration figures. The
// policy is advisory; anything not clearly disqualified is kept.
func defaultContextValidator(text string, start, end int) bool {
	prefix := text[:start]

	// Nearest non-space rune before the match: a currency symbol
	// disqualifies ("$12345", "€ 1234").
	trimmed := strings.TrimRightFunc(prefix, unicode.IsSpace)
	if last, _ := utf8.DecodeLastRuneInString(trimmed); last == '$' || last == '€' || last == '£' {
		return false
	}

	// Fragment of a larger number: "3.14159" or "12,345".
	if len(prefix) >= 2 {
		sep := prefix[len(prefix)-1]
		if (sep == '.' || sep == ',') && prefix[len(prefix)-2] >= '0' && prefix[len(prefix)-2] <= '9' {
			return false
		}
	}

	rest := strings.ToLower(text[end:])

	// Decimal continuation: "1234.56".
	if len(rest) >= 2 && (rest[0] == '.' || rest[0] == ',') && rest[1] >= '0' && rest[1] <= '9' {
		return false
	}

	// Unit suffix: "12345%", "12345ms", "1030am", "12345h".
	for _, unit := range []string{"%", "ms", "hrs", "am", "pm", "h"} {
		if rest == unit || (strings.HasPrefix(rest, unit) && !isWordChar(rest[len(unit)])) {
			return false
		}
	}

	return true
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
