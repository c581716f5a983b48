package matcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"worklog-reconciler/internal/models"
)

// Options configures a Matcher. Zero values for MinID/MaxID/Workers are
// replaced by defaults; an out-of-range FuzzyThreshold is rejected at
// construction, never mid-batch.
type Options struct {
	Patterns       []Pattern // nil means DefaultPatterns
	MinID          int       // default 1000
	MaxID          int       // default 999999
	FuzzyEnabled   bool
	FuzzyThreshold float64  // default 0.8 when zero
	TypePreference []string // default Bug, Task, User Story, Feature, Epic
	Workers        int      // default 4
	Validator      ContextValidator
}

// Diagnostic reports a time entry rejected for violating the source
// contract. Rejections never abort a batch; they are surfaced beside
// the results.
type Diagnostic struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason"`
}

// Matcher joins time entries to work items. It holds no per-run state:
// a single instance is safe for concurrent and repeated use.
type Matcher struct {
	extractor *Extractor
	resolver  *Resolver
	fuzzy     *FuzzyMatcher
	opts      Options
}

// New validates opts and builds a Matcher.
func New(opts Options) (*Matcher, error) {
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns()
	}
	if opts.MinID == 0 {
		opts.MinID = 1000
	}
	if opts.MaxID == 0 {
		opts.MaxID = 999999
	}
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = 0.8
	}
	if len(opts.TypePreference) == 0 {
		opts.TypePreference = []string{"Bug", "Task", "User Story", "Feature", "Epic"}
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}

	if opts.MinID < 1 {
		return nil, fmt.Errorf("min work item id must be positive, got %d", opts.MinID)
	}
	if opts.MaxID < opts.MinID {
		return nil, fmt.Errorf("max work item id %d is below min %d", opts.MaxID, opts.MinID)
	}
	if opts.FuzzyThreshold < 0 || opts.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("fuzzy threshold must be within [0, 1], got %v", opts.FuzzyThreshold)
	}
	if opts.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}

	return &Matcher{
		extractor: NewExtractor(opts.Patterns, opts.MinID, opts.MaxID, opts.Validator),
		resolver:  NewResolver(opts.TypePreference),
		fuzzy:     NewFuzzyMatcher(opts.FuzzyThreshold),
		opts:      opts,
	}, nil
}

// ExtractIDs returns the unique work item IDs referenced across all
// entries, for batched catalog fetching before the match pass.
func (m *Matcher) ExtractIDs(entries []models.TimeEntry) []int {
	seen := make(map[int]bool)
	var ids []int
	for i := range entries {
		for _, candidate := range m.extractor.Extract(entries[i].Description) {
			if !seen[candidate.ID] {
				seen[candidate.ID] = true
				ids = append(ids, candidate.ID)
			}
		}
	}
	return ids
}

// Match produces exactly one MatchedRecord per valid time entry, in
// input order. The catalog is read-only during the pass; entries are
// processed independently across a bounded worker pool and results are
// reassembled by input position so output is deterministic.
func (m *Matcher) Match(ctx context.Context, entries []models.TimeEntry, catalog map[int]*models.WorkItem) ([]models.MatchedRecord, []Diagnostic) {
	results := make([]*models.MatchedRecord, len(entries))
	rejects := make([]*Diagnostic, len(entries))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)

	for i := range entries {
		g.Go(func() error {
			entry := entries[i]
			if !entry.Valid() {
				rejects[i] = &Diagnostic{
					EntryID: entry.ID,
					Reason:  fmt.Sprintf("invalid interval: end %s before start %s", entry.End.Format("2006-01-02T15:04:05"), entry.Start.Format("2006-01-02T15:04:05")),
				}
				return nil
			}
			record := m.matchOne(entry, catalog)
			results[i] = &record
			return nil
		})
	}
	// Workers only signal completion; per-entry problems land in rejects.
	_ = g.Wait()

	records := make([]models.MatchedRecord, 0, len(entries))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	var diagnostics []Diagnostic
	for _, d := range rejects {
		if d != nil {
			diagnostics = append(diagnostics, *d)
		}
	}
	return records, diagnostics
}

// matchOne resolves a single entry. Data quality issues are normal
// outcomes here, never errors.
func (m *Matcher) matchOne(entry models.TimeEntry, catalog map[int]*models.WorkItem) models.MatchedRecord {
	candidates := m.extractor.Extract(entry.Description)

	switch len(candidates) {
	case 0:
		return m.fallback(entry, catalog)

	case 1:
		item, ok := catalog[candidates[0].ID]
		if !ok || item == nil {
			return m.fallback(entry, catalog)
		}
		return models.Matched(entry, item, models.StrategyExplicit, patternConfidence(candidates[0]))

	default:
		item, winner := m.resolver.Resolve(entry.Description, candidates, catalog)
		if item == nil {
			return m.fallback(entry, catalog)
		}
		return models.Matched(entry, item, models.StrategyResolved, patternConfidence(*winner))
	}
}

// fallback runs the fuzzy matcher when no candidate resolved, or marks
// the entry unmatched when fuzzy matching is disabled or finds nothing.
func (m *Matcher) fallback(entry models.TimeEntry, catalog map[int]*models.WorkItem) models.MatchedRecord {
	if m.opts.FuzzyEnabled {
		if item, score := m.fuzzy.Match(entry.Description, catalog); item != nil {
			return models.Matched(entry, item, models.StrategyFuzzy, score)
		}
	}
	return models.Unmatched(entry)
}

// patternConfidence scores how strong the matched reference format is:
// explicit formats score by priority, weak bare numbers score 0.5.
func patternConfidence(c Candidate) float64 {
	if c.Priority >= 10 {
		return 0.5
	}
	confidence := 1.0 - float64(c.Priority)*0.1
	if confidence < 0.5 {
		return 0.5
	}
	return confidence
}
