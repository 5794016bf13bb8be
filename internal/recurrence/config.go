// Package recurrence computes occurrences of recurring post schedules.
//
// All wall-clock arithmetic happens on civil dates in the schedule's zone;
// values are converted to absolute instants only when a result is produced.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Frequency is the recurrence unit of a schedule.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// TimeOfDay is a wall-clock time in the schedule's timezone.
type TimeOfDay struct {
	Hour   int `json:"hour"   yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, configErr("time", "%q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return TimeOfDay{}, configErr("time", "%q is not HH:MM", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return TimeOfDay{}, configErr("time", "%q is not HH:MM", s)
	}
	t := TimeOfDay{Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

// Validate checks the hour and minute ranges.
func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return configErr("time.hour", "%d is outside 0-23", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return configErr("time.minute", "%d is outside 0-59", t.Minute)
	}
	return nil
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Civil returns t as a civil.Time with zero seconds.
func (t TimeOfDay) Civil() civil.Time {
	return civil.Time{Hour: t.Hour, Minute: t.Minute}
}

// Config describes when a recurring post fires. It is a value type; nothing
// in this package mutates a Config it is handed.
type Config struct {
	Frequency Frequency `json:"frequency"`
	Time      TimeOfDay `json:"time"`
	// Days holds weekdays (0=Sunday..6) for weekly schedules and days of
	// month (1..31) for monthly ones. Empty means the plain unit.
	Days      []int      `json:"days,omitempty"`
	Timezone  string     `json:"timezone"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Validate reports the first problem with cfg as a *ConfigError.
func (cfg Config) Validate() error {
	if !cfg.Frequency.Valid() {
		return configErr("frequency", "unknown frequency %q", cfg.Frequency)
	}
	if err := cfg.Time.Validate(); err != nil {
		return err
	}
	if cfg.StartDate.IsZero() {
		return configErr("start_date", "required")
	}
	if _, err := LoadLocation(cfg.Timezone); err != nil {
		return err
	}
	switch cfg.Frequency {
	case FrequencyWeekly:
		for _, d := range cfg.Days {
			if d < 0 || d > 6 {
				return configErr("days", "weekday %d is outside 0-6", d)
			}
		}
	case FrequencyMonthly:
		for _, d := range cfg.Days {
			if d < 1 || d > 31 {
				return configErr("days", "day of month %d is outside 1-31", d)
			}
		}
	}
	return nil
}

// Location resolves cfg.Timezone.
func (cfg Config) Location() (*time.Location, error) {
	return LoadLocation(cfg.Timezone)
}
