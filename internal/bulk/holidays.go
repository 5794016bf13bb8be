package bulk

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// HolidaySet is a set of calendar dates excluded when SkipHolidays is set.
// It encodes as a JSON array of "YYYY-MM-DD" strings.
type HolidaySet map[civil.Date]struct{}

// NewHolidaySet builds a set from dates.
func NewHolidaySet(dates ...civil.Date) HolidaySet {
	h := make(HolidaySet, len(dates))
	for _, d := range dates {
		h[d] = struct{}{}
	}
	return h
}

// ParseHolidays parses "YYYY-MM-DD" strings into a set.
func ParseHolidays(values []string) (HolidaySet, error) {
	h := make(HolidaySet, len(values))
	for _, v := range values {
		d, err := civil.ParseDate(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("parse holiday %q: %w", v, err)
		}
		h[d] = struct{}{}
	}
	return h, nil
}

// Contains reports whether d is a holiday. A nil set contains nothing.
func (h HolidaySet) Contains(d civil.Date) bool {
	_, ok := h[d]
	return ok
}

// Merge returns a new set holding the dates of both sets.
func (h HolidaySet) Merge(other HolidaySet) HolidaySet {
	out := make(HolidaySet, len(h)+len(other))
	for d := range h {
		out[d] = struct{}{}
	}
	for d := range other {
		out[d] = struct{}{}
	}
	return out
}

// Dates returns the holidays in ascending order.
func (h HolidaySet) Dates() []civil.Date {
	out := make([]civil.Date, 0, len(h))
	for d := range h {
		out = append(out, d)
	}
	slices.SortFunc(out, compareDates)
	return out
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func (h HolidaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Dates())
}

func (h *HolidaySet) UnmarshalJSON(data []byte) error {
	var dates []civil.Date
	if err := json.Unmarshal(data, &dates); err != nil {
		return fmt.Errorf("decode holidays: %w", err)
	}
	*h = NewHolidaySet(dates...)
	return nil
}
