package recurrence

import (
	"time"
	_ "time/tzdata" // zone database fallback for hosts without zoneinfo

	"cloud.google.com/go/civil"
)

// LoadLocation resolves an IANA zone name. An empty name means UTC; an
// unknown name is a configuration error, never a silent fallback.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, configErr("timezone", "unknown zone %q", name)
	}
	return loc, nil
}

// At converts a civil date and time in loc to an absolute instant. Times
// falling in a DST gap are normalized forward by the standard library.
func At(d civil.Date, t civil.Time, loc *time.Location) time.Time {
	return civil.DateTime{Date: d, Time: t}.In(loc)
}

// Weekday returns the day of week of a civil date.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
