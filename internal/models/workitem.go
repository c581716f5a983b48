package models

import "strings"

// WorkItem represents an Azure DevOps work item. The numeric ID is the
// join key used throughout matching; the catalog handed to the matcher
// is a map[int]*WorkItem and may be incomplete.
type WorkItem struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	State         string   `json:"state"`
	Type          string   `json:"type"`
	Description   string   `json:"description,omitempty"`
	AssignedTo    string   `json:"assigned_to,omitempty"`
	AreaPath      string   `json:"area_path,omitempty"`
	IterationPath string   `json:"iteration_path,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// IsCompleted reports whether the work item is in a terminal state.
// Completed items are skipped by the fuzzy matcher.
func (w *WorkItem) IsCompleted() bool {
	switch strings.ToLower(w.State) {
	case "resolved", "closed", "done", "removed":
		return true
	}
	return false
}

// Iteration returns the last segment of the iteration path,
// e.g. "Project\Iteration\Sprint 12" -> "Sprint 12".
func (w *WorkItem) Iteration() string {
	if w.IterationPath == "" {
		return ""
	}
	parts := strings.Split(w.IterationPath, `\`)
	return parts[len(parts)-1]
}

// Area returns the area path with the leading project segment removed.
func (w *WorkItem) Area() string {
	if w.AreaPath == "" {
		return ""
	}
	parts := strings.Split(w.AreaPath, `\`)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], `\`)
}
