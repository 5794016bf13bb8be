// Package calendar projects schedule results onto a month grid, giving each
// day a single display status.
package calendar

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/soochol/postplan/internal/recurrence"
)

// Status is the display status of a calendar day.
type Status string

// Statuses in descending priority.
const (
	StatusScheduled Status = "scheduled"
	StatusConflict  Status = "conflict"
	StatusSkipped   Status = "skipped"
	StatusExisting  Status = "existing"
	StatusNone      Status = "none"
)

// Marks are the instants to project. A day carrying several marks shows
// the highest priority one: scheduled > conflict > skipped > existing.
type Marks struct {
	Scheduled []time.Time
	Conflicts []time.Time
	Skipped   []time.Time
	Existing  []time.Time
}

// Day is one projected calendar cell.
type Day struct {
	Date    civil.Date `json:"date"`
	Status  Status     `json:"status"`
	InMonth bool       `json:"in_month"`
}

// Project tags each of days with its status. Instants are mapped to civil
// dates in loc; a nil loc means UTC.
func Project(days []civil.Date, marks Marks, loc *time.Location) []Day {
	if loc == nil {
		loc = time.UTC
	}
	status := make(map[civil.Date]Status)
	// Lowest priority first so higher ones overwrite.
	layers := []struct {
		s  Status
		ts []time.Time
	}{
		{StatusExisting, marks.Existing},
		{StatusSkipped, marks.Skipped},
		{StatusConflict, marks.Conflicts},
		{StatusScheduled, marks.Scheduled},
	}
	for _, l := range layers {
		for _, t := range l.ts {
			status[civil.DateOf(t.In(loc))] = l.s
		}
	}

	out := make([]Day, len(days))
	for i, d := range days {
		s, ok := status[d]
		if !ok {
			s = StatusNone
		}
		out[i] = Day{Date: d, Status: s}
	}
	return out
}

// MonthGrid returns the 42 dates (six weeks) a month view shows, starting
// on the weekStart on or before the first of the month.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) []civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	offset := (int(recurrence.Weekday(first)) - int(weekStart) + 7) % 7
	start := first.AddDays(-offset)

	grid := make([]civil.Date, 42)
	for i := range grid {
		grid[i] = start.AddDays(i)
	}
	return grid
}

// ProjectMonth projects marks onto the MonthGrid of year/month and flags the
// cells that belong to the month itself.
func ProjectMonth(year int, month time.Month, weekStart time.Weekday, marks Marks, loc *time.Location) []Day {
	days := Project(MonthGrid(year, month, weekStart), marks, loc)
	for i := range days {
		days[i].InMonth = days[i].Date.Year == year && days[i].Date.Month == month
	}
	return days
}
