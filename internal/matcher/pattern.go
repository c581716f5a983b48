package matcher

import "regexp"

// Pattern describes one recognized textual work item reference format.
// Lower priority values are scanned and preferred first. Patterns with
// RequiresValidation produce weak evidence (a bare 4-6 digit number in
// prose) and are additionally run through the extractor's contextual
// validator.
type Pattern struct {
	Name               string
	Regexp             *regexp.Regexp
	Priority           int
	RequiresValidation bool
}

// DefaultPatterns returns the recognized reference formats in priority
// order. Ranks are explicit, not positional: adding a pattern never
// changes the rank of an existing one.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "hash", Regexp: regexp.MustCompile(`(?i)#(\d{4,6})`), Priority: 1},
		{Name: "ado_dash", Regexp: regexp.MustCompile(`(?i)ADO-(\d{4,6})`), Priority: 2},
		{Name: "ado_underscore", Regexp: regexp.MustCompile(`(?i)ADO_(\d{4,6})`), Priority: 2},
		{Name: "wi_colon", Regexp: regexp.MustCompile(`(?i)WI:(\d{4,6})`), Priority: 3},
		{Name: "wi_underscore", Regexp: regexp.MustCompile(`(?i)WI_(\d{4,6})`), Priority: 3},
		// Both enclosure forms carry the same rank so two enclosed
		// references in one description tie and fall to text order.
		{Name: "brackets", Regexp: regexp.MustCompile(`\[(\d{4,6})\]`), Priority: 4},
		{Name: "parentheses", Regexp: regexp.MustCompile(`\((\d{4,6})\)`), Priority: 4},
		{Name: "plain_number", Regexp: regexp.MustCompile(`\b(\d{4,6})\b`), Priority: 10, RequiresValidation: true},
	}
}
