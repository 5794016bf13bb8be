package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders cfg as a one-line human readable summary, e.g.
// "Weekly on Monday, Wednesday at 9:00 AM". Out-of-range days are left out.
func Describe(cfg Config) string {
	clock := formatClock(cfg.Time)

	switch cfg.Frequency {
	case FrequencyOnce:
		if cfg.StartDate.IsZero() {
			return "Once at " + clock
		}
		loc, err := cfg.Location()
		if err != nil {
			loc = time.UTC
		}
		return fmt.Sprintf("Once on %s at %s", cfg.StartDate.In(loc).Format("Jan 2, 2006"), clock)
	case FrequencyDaily:
		return "Daily at " + clock
	case FrequencyWeekly:
		var names []string
		for _, d := range normalizeDays(cfg.Days) {
			if d >= 0 && d <= 6 {
				names = append(names, time.Weekday(d).String())
			}
		}
		if len(names) == 0 {
			return "Weekly at " + clock
		}
		return fmt.Sprintf("Weekly on %s at %s", strings.Join(names, ", "), clock)
	case FrequencyMonthly:
		var names []string
		for _, d := range normalizeDays(cfg.Days) {
			if d >= 1 && d <= 31 {
				names = append(names, ordinal(d))
			}
		}
		if len(names) == 0 {
			return "Monthly at " + clock
		}
		return fmt.Sprintf("Monthly on the %s at %s", strings.Join(names, ", "), clock)
	}
	return "Invalid schedule"
}

func formatClock(t TimeOfDay) string {
	suffix := "AM"
	if t.Hour >= 12 {
		suffix = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, suffix)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
