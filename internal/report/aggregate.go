package report

import (
	"sort"

	"worklog-reconciler/internal/models"
)

// UnmatchedLabel names the bucket for entries that resolved to no work
// item. Unmatched time is a first-class outcome, not an error.
const UnmatchedLabel = "Unmatched"

// PersonTotal aggregates hours for one person.
type PersonTotal struct {
	UserName       string  `json:"user_name"`
	Entries        int     `json:"entries"`
	Hours          float64 `json:"hours"`
	MatchedHours   float64 `json:"matched_hours"`
	UnmatchedHours float64 `json:"unmatched_hours"`
}

// WorkItemTotal aggregates hours booked against one work item. The
// unmatched bucket has WorkItemID 0 and Title "Unmatched".
type WorkItemTotal struct {
	WorkItemID int     `json:"work_item_id"`
	Title      string  `json:"title"`
	Type       string  `json:"type,omitempty"`
	State      string  `json:"state,omitempty"`
	Entries    int     `json:"entries"`
	Hours      float64 `json:"hours"`
}

// DayTotal aggregates hours per calendar day.
type DayTotal struct {
	Date    string  `json:"date"`
	Entries int     `json:"entries"`
	Hours   float64 `json:"hours"`
}

// Aggregate is the reduction of one run's matched records into the
// tables the renderers serialize.
type Aggregate struct {
	TotalEntries     int     `json:"total_entries"`
	MatchedEntries   int     `json:"matched_entries"`
	UnmatchedEntries int     `json:"unmatched_entries"`
	TotalHours       float64 `json:"total_hours"`
	MatchedHours     float64 `json:"matched_hours"`
	UnmatchedHours   float64 `json:"unmatched_hours"`
	MatchRate        float64 `json:"match_rate"`

	ByPerson   []PersonTotal   `json:"by_person"`
	ByWorkItem []WorkItemTotal `json:"by_work_item"`
	ByDay      []DayTotal      `json:"by_day"`
}

// Compute reduces records into the aggregate tables. Output ordering is
// deterministic: people by name, work items by ID with the unmatched
// bucket last, days chronologically.
func Compute(records []models.MatchedRecord) *Aggregate {
	agg := &Aggregate{TotalEntries: len(records)}

	people := make(map[string]*PersonTotal)
	items := make(map[int]*WorkItemTotal)
	days := make(map[string]*DayTotal)

	for i := range records {
		record := &records[i]
		hours := record.Entry.Hours
		agg.TotalHours += hours

		person, ok := people[record.Entry.UserName]
		if !ok {
			person = &PersonTotal{UserName: record.Entry.UserName}
			people[record.Entry.UserName] = person
		}
		person.Entries++
		person.Hours += hours

		var itemID int
		var title, itemType, state string
		if record.IsMatched() {
			agg.MatchedEntries++
			agg.MatchedHours += hours
			person.MatchedHours += hours
			itemID = *record.WorkItemID
			title = record.WorkItemTitle
			itemType = record.WorkItemType
			state = record.WorkItemState
		} else {
			agg.UnmatchedEntries++
			agg.UnmatchedHours += hours
			person.UnmatchedHours += hours
			title = UnmatchedLabel
		}

		item, ok := items[itemID]
		if !ok {
			item = &WorkItemTotal{WorkItemID: itemID, Title: title, Type: itemType, State: state}
			items[itemID] = item
		}
		item.Entries++
		item.Hours += hours

		date := record.Entry.Date()
		day, ok := days[date]
		if !ok {
			day = &DayTotal{Date: date}
			days[date] = day
		}
		day.Entries++
		day.Hours += hours
	}

	if agg.TotalEntries > 0 {
		agg.MatchRate = float64(agg.MatchedEntries) / float64(agg.TotalEntries)
	}

	for _, person := range people {
		agg.ByPerson = append(agg.ByPerson, *person)
	}
	sort.Slice(agg.ByPerson, func(i, j int) bool {
		return agg.ByPerson[i].UserName < agg.ByPerson[j].UserName
	})

	for _, item := range items {
		agg.ByWorkItem = append(agg.ByWorkItem, *item)
	}
	sort.Slice(agg.ByWorkItem, func(i, j int) bool {
		a, b := agg.ByWorkItem[i], agg.ByWorkItem[j]
		if (a.WorkItemID == 0) != (b.WorkItemID == 0) {
			return b.WorkItemID == 0 // unmatched bucket sorts last
		}
		return a.WorkItemID < b.WorkItemID
	})

	for _, day := range days {
		agg.ByDay = append(agg.ByDay, *day)
	}
	sort.Slice(agg.ByDay, func(i, j int) bool {
		return agg.ByDay[i].Date < agg.ByDay[j].Date
	})

	return agg
}
