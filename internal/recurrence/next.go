package recurrence

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
)

// maxMonthsAhead bounds the monthly search. Any valid day of month recurs
// within two months, so this is never reached for a validated config.
const maxMonthsAhead = 24

// NextOccurrence returns the first occurrence of cfg that has not passed
// relative to from. A zero from means now. ok is false when the schedule
// has no further occurrence (a past one-off, or past EndDate); that is not
// an error.
//
// For recurring frequencies the result is strictly after from. A one-off
// schedule whose anchor equals from is still returned.
func NextOccurrence(cfg Config, from time.Time) (next time.Time, ok bool, err error) {
	if err := cfg.Validate(); err != nil {
		return time.Time{}, false, err
	}
	loc, _ := cfg.Location()
	if from.IsZero() {
		from = time.Now()
	}

	at := cfg.Time.Civil()
	anchor := civil.DateOf(cfg.StartDate.In(loc))
	first := At(anchor, at, loc)

	var candidate time.Time
	switch {
	case cfg.Frequency == FrequencyOnce:
		if first.Before(from) {
			return time.Time{}, false, nil
		}
		candidate = first
	case first.After(from):
		candidate = first
	default:
		start := civil.DateOf(from.In(loc))
		if start.Before(anchor) {
			start = anchor
		}
		var found bool
		candidate, found = advance(cfg, anchor, start, from, loc)
		if !found {
			return time.Time{}, false, nil
		}
	}

	if cfg.EndDate != nil && candidate.After(*cfg.EndDate) {
		return time.Time{}, false, nil
	}
	return candidate.UTC(), true, nil
}

// advance finds the earliest date on or after start that matches the
// schedule's day rule and whose occurrence is after from.
func advance(cfg Config, anchor, start civil.Date, from time.Time, loc *time.Location) (time.Time, bool) {
	at := cfg.Time.Civil()

	if cfg.Frequency == FrequencyMonthly {
		if len(cfg.Days) == 0 {
			return nextMonthlyOn(anchor.Day, start, at, from, loc)
		}
		return nextMonthly(normalizeDays(cfg.Days), start, at, from, loc)
	}

	match := func(civil.Date) bool { return true }
	if cfg.Frequency == FrequencyWeekly {
		weekdays := cfg.Days
		if len(weekdays) == 0 {
			weekdays = []int{int(Weekday(anchor))}
		}
		match = func(d civil.Date) bool {
			return slices.Contains(weekdays, int(Weekday(d)))
		}
	}

	// Seven days cover every weekday; the eighth handles a match on start
	// whose time of day is already behind from.
	d := start
	for i := 0; i < 8; i++ {
		if match(d) {
			if t := At(d, at, loc); t.After(from) {
				return t, true
			}
		}
		d = d.AddDays(1)
	}
	return time.Time{}, false
}

// nextMonthly picks the earliest listed day of month that is >= the start
// day in start's month; otherwise the earliest listed day in the following
// months that actually have it. days must be sorted ascending.
func nextMonthly(days []int, start civil.Date, at civil.Time, from time.Time, loc *time.Location) (time.Time, bool) {
	year, month, minDay := start.Year, start.Month, start.Day
	for i := 0; i < maxMonthsAhead; i++ {
		last := DaysIn(year, month)
		for _, day := range days {
			if day < minDay || day > last {
				continue
			}
			d := civil.Date{Year: year, Month: month, Day: day}
			if t := At(d, at, loc); t.After(from) {
				return t, true
			}
		}
		minDay = 1
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return time.Time{}, false
}

// nextMonthlyOn steps one calendar month at a time on day, clamped to the
// last day of months that are shorter (Jan 31 gives Feb 29, then Mar 31).
func nextMonthlyOn(day int, start civil.Date, at civil.Time, from time.Time, loc *time.Location) (time.Time, bool) {
	year, month, minDay := start.Year, start.Month, start.Day
	for i := 0; i < maxMonthsAhead; i++ {
		d := civil.Date{Year: year, Month: month, Day: min(day, DaysIn(year, month))}
		if d.Day >= minDay {
			if t := At(d, at, loc); t.After(from) {
				return t, true
			}
		}
		minDay = 1
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return time.Time{}, false
}

func normalizeDays(days []int) []int {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

// Occurrences returns up to limit successive occurrences starting at from.
// One-off schedules yield at most one.
func Occurrences(cfg Config, from time.Time, limit int) ([]time.Time, error) {
	out := []time.Time{}
	for len(out) < limit {
		next, ok, err := NextOccurrence(cfg, from)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, next)
		if cfg.Frequency == FrequencyOnce {
			break
		}
		from = next
	}
	return out, nil
}
