package matcher

import (
	"strings"

	"worklog-reconciler/internal/models"
)

// Resolver picks a single winning candidate when extraction yields more
// than one. Selection is deterministic so repeated runs over the same
// inputs produce byte-identical output.
type Resolver struct {
	typeRank map[string]int
	worst    int
}

// NewResolver builds a resolver with the given work item type preference
// order, most preferred first. Types not listed rank below all listed
// ones.
func NewResolver(typePreference []string) *Resolver {
	rank := make(map[string]int, len(typePreference))
	for i, t := range typePreference {
		rank[strings.ToLower(t)] = i
	}
	return &Resolver{typeRank: rank, worst: len(typePreference)}
}

// rankedCandidate carries the precomputed sort keys for one resolvable
// candidate.
type rankedCandidate struct {
	candidate Candidate
	item      *models.WorkItem
	typeRank  int
	noTitle   int // 0 when the item title appears verbatim in the text
}

// beats reports whether a should be preferred over b. Candidates arrive
// in appearance order, so a strict comparison keeps the earlier one on
// full ties.
func (a *rankedCandidate) beats(b *rankedCandidate) bool {
	if a.typeRank != b.typeRank {
		return a.typeRank < b.typeRank
	}
	if a.noTitle != b.noTitle {
		return a.noTitle < b.noTitle
	}
	return a.candidate.Priority < b.candidate.Priority
}

// Resolve selects the winning candidate among several, or returns nil
// when none of them resolve in the catalog. Candidates must be in order
// of first appearance in the text; that order is the final tiebreak.
//
// Selection order: catalog resolution, work item type preference,
// verbatim title occurrence in the description, pattern priority,
// first appearance.
func (r *Resolver) Resolve(description string, candidates []Candidate, catalog map[int]*models.WorkItem) (*models.WorkItem, *Candidate) {
	lowerDesc := strings.ToLower(description)

	var best *rankedCandidate
	for i := range candidates {
		item, ok := catalog[candidates[i].ID]
		if !ok || item == nil {
			continue
		}

		current := &rankedCandidate{
			candidate: candidates[i],
			item:      item,
			typeRank:  r.rankType(item.Type),
			noTitle:   1,
		}
		if title := strings.ToLower(strings.TrimSpace(item.Title)); title != "" && strings.Contains(lowerDesc, title) {
			current.noTitle = 0
		}

		if best == nil || current.beats(best) {
			best = current
		}
	}

	if best == nil {
		return nil, nil
	}
	candidate := best.candidate
	return best.item, &candidate
}

func (r *Resolver) rankType(itemType string) int {
	if rank, ok := r.typeRank[strings.ToLower(itemType)]; ok {
		return rank
	}
	return r.worst
}
