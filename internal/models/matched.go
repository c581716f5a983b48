package models

// Match strategies recorded on a MatchedRecord.
const (
	StrategyExplicit = "explicit" // single extracted ID resolved directly
	StrategyResolved = "resolved" // conflict resolver picked among several
	StrategyFuzzy    = "fuzzy"    // title-similarity fallback
	StrategyNone     = "none"     // unmatched
)

// MatchedRecord is the join result of one time entry and at most one
// work item. WorkItemID is nil for unmatched entries; every time entry
// produces exactly one record, matched or not.
type MatchedRecord struct {
	Entry TimeEntry `json:"entry"`

	WorkItemID    *int   `json:"work_item_id,omitempty"`
	WorkItemTitle string `json:"work_item_title,omitempty"`
	WorkItemType  string `json:"work_item_type,omitempty"`
	WorkItemState string `json:"work_item_state,omitempty"`
	Iteration     string `json:"iteration,omitempty"`
	Area          string `json:"area,omitempty"`

	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

// IsMatched reports whether the record resolved to a work item.
func (m *MatchedRecord) IsMatched() bool {
	return m.WorkItemID != nil
}

// Unmatched builds the single output record for an entry that resolved
// to no work item.
func Unmatched(entry TimeEntry) MatchedRecord {
	return MatchedRecord{Entry: entry, Strategy: StrategyNone}
}

// Matched builds the output record joining an entry to a work item.
func Matched(entry TimeEntry, item *WorkItem, strategy string, confidence float64) MatchedRecord {
	id := item.ID
	return MatchedRecord{
		Entry:         entry,
		WorkItemID:    &id,
		WorkItemTitle: item.Title,
		WorkItemType:  item.Type,
		WorkItemState: item.State,
		Iteration:     item.Iteration(),
		Area:          item.Area(),
		Strategy:      strategy,
		Confidence:    confidence,
	}
}
