package models

import "time"

// TimeEntry represents a single Clockify time entry with its free-text
// description. Entries are immutable once fetched; the matcher only
// reads them.
type TimeEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Hours       float64   `json:"hours"`
	Billable    bool      `json:"billable"`
	ProjectID   string    `json:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// Date returns the calendar date of the entry based on its start time.
func (e *TimeEntry) Date() string {
	return e.Start.Format("2006-01-02")
}

// HasDescription reports whether the entry carries non-blank text.
func (e *TimeEntry) HasDescription() bool {
	for _, r := range e.Description {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// Valid reports whether the entry satisfies the source contract:
// a non-negative duration and end not before start.
func (e *TimeEntry) Valid() bool {
	return e.Hours >= 0 && !e.End.Before(e.Start)
}
