package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) civil.Date { return civil.Date{Year: 2024, Month: time.March, Day: d} }

func at(d, h int) time.Time { return time.Date(2024, time.March, d, h, 0, 0, 0, time.UTC) }

func TestProject_Priority(t *testing.T) {
	marks := Marks{
		Scheduled: []time.Time{at(1, 9), at(5, 9)},
		Conflicts: []time.Time{at(1, 12), at(2, 9), at(6, 9)},
		Skipped:   []time.Time{at(2, 12), at(3, 9), at(6, 10)},
		Existing:  []time.Time{at(1, 8), at(3, 8), at(4, 8), at(5, 8), at(6, 8)},
	}
	got := Project([]civil.Date{day(1), day(2), day(3), day(4), day(5), day(6), day(7)}, marks, nil)

	want := []Status{
		StatusScheduled, // scheduled beats conflict and existing
		StatusConflict,  // conflict beats skipped
		StatusSkipped,   // skipped beats existing
		StatusExisting,
		StatusScheduled,
		StatusConflict,
		StatusNone,
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].Status, "day %v", got[i].Date)
	}
}

func TestProject_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 2024-03-02T05:00Z is the evening of March 1 in Los Angeles.
	marks := Marks{Scheduled: []time.Time{at(2, 5)}}
	got := Project([]civil.Date{day(1), day(2)}, marks, loc)
	assert.Equal(t, StatusScheduled, got[0].Status)
	assert.Equal(t, StatusNone, got[1].Status)
}

func TestMonthGrid(t *testing.T) {
	// March 2024 starts on a Friday.
	grid := MonthGrid(2024, time.March, time.Sunday)
	require.Len(t, grid, 42)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 25}, grid[0])
	assert.Equal(t, day(1), grid[5])
	assert.Equal(t, civil.Date{Year: 2024, Month: time.April, Day: 6}, grid[41])

	monday := MonthGrid(2024, time.April, time.Monday)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.April, Day: 1}, monday[0])
}

func TestProjectMonth_InMonth(t *testing.T) {
	days := ProjectMonth(2024, time.March, time.Sunday, Marks{Existing: []time.Time{at(31, 9)}}, time.UTC)
	inMonth := 0
	for _, d := range days {
		if d.InMonth {
			inMonth++
		}
	}
	assert.Equal(t, 31, inMonth)
	assert.False(t, days[0].InMonth)
	assert.Equal(t, StatusExisting, days[35].Status) // March 31
}
