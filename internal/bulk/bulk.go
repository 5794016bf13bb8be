// Package bulk generates a fixed number of candidate post slots from a
// schedule and classifies each against weekends, holidays and posts that
// are already scheduled.
package bulk

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/soochol/postplan/internal/recurrence"
)

// MaxPosts bounds NumberOfPosts for a single request.
const MaxPosts = 1000

// maxSpanMinutes bounds NumberOfPosts * Interval, about 100 years.
const maxSpanMinutes = 100 * 366 * 24 * 60

// Unit is the spacing unit between bulk candidates.
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
)

// Interval spaces successive candidates.
type Interval struct {
	Value int  `json:"value"`
	Unit  Unit `json:"unit"`
}

// Config extends a recurrence config with bulk generation settings.
type Config struct {
	recurrence.Config

	NumberOfPosts int      `json:"number_of_posts"`
	Interval      Interval `json:"interval"`
	SkipWeekends  bool     `json:"skip_weekends"`
	SkipHolidays  bool     `json:"skip_holidays"`
	// TimeSlots are "HH:MM" times cycled through in order for day and week
	// intervals, replacing Time.
	TimeSlots []string   `json:"time_slots,omitempty"`
	Holidays  HolidaySet `json:"holidays,omitempty"`
}

// Status classifies a candidate.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConflict  Status = "conflict"
	StatusSkipped   Status = "skipped"
)

// SkipReason says why a candidate was skipped.
type SkipReason string

const (
	SkipWeekend  SkipReason = "weekend"
	SkipHoliday  SkipReason = "holiday"
	SkipAfterEnd SkipReason = "after_end"
)

// Entry is one classified candidate. Index is the 1-based generation step.
type Entry struct {
	Index  int        `json:"index"`
	At     time.Time  `json:"at"`
	Status Status     `json:"status"`
	Reason SkipReason `json:"reason,omitempty"`
}

// Result partitions the generated candidates. Each slice keeps generation
// order and the three partitions together always hold NumberOfPosts items.
type Result struct {
	ScheduledDates []time.Time `json:"scheduled_dates"`
	Conflicts      []time.Time `json:"conflicts"`
	SkippedDates   []time.Time `json:"skipped_dates"`
	Entries        []Entry     `json:"entries"`
}

// Total returns the number of classified candidates.
func (r Result) Total() int {
	return len(r.ScheduledDates) + len(r.Conflicts) + len(r.SkippedDates)
}

var unitMinutes = map[Unit]int64{
	UnitMinutes: 1,
	UnitHours:   60,
	UnitDays:    24 * 60,
	UnitWeeks:   7 * 24 * 60,
}

// plan is a validated Config ready for generation.
type plan struct {
	cfg    Config
	loc    *time.Location
	slots  []civil.Time
	step   time.Duration // minutes and hours
	days   int           // days and weeks
	anchor time.Time
}

// Validate reports the first problem with cfg as a *recurrence.ConfigError.
func (cfg Config) Validate() error {
	_, err := cfg.plan(time.Now())
	return err
}

func (cfg Config) plan(now time.Time) (*plan, error) {
	if cfg.Frequency != "" && !cfg.Frequency.Valid() {
		return nil, recurrence.NewConfigError("frequency", "unknown frequency %q", cfg.Frequency)
	}
	if cfg.Frequency == recurrence.FrequencyOnce && cfg.NumberOfPosts > 1 {
		return nil, recurrence.NewConfigError("frequency", "once cannot generate %d posts", cfg.NumberOfPosts)
	}
	if err := cfg.Time.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.NumberOfPosts > MaxPosts {
		return nil, recurrence.NewConfigError("number_of_posts", "at most %d, got %d", MaxPosts, cfg.NumberOfPosts)
	}
	if cfg.Interval.Value <= 0 {
		return nil, recurrence.NewConfigError("interval.value", "must be positive, got %d", cfg.Interval.Value)
	}
	if unit, ok := unitMinutes[cfg.Interval.Unit]; ok {
		n := int64(max(cfg.NumberOfPosts, 1))
		if int64(cfg.Interval.Value) > maxSpanMinutes/unit/n {
			return nil, recurrence.NewConfigError("interval.value",
				"%d %s x %d posts spans more than 100 years", cfg.Interval.Value, cfg.Interval.Unit, n)
		}
	}

	p := &plan{cfg: cfg, loc: loc, anchor: cfg.StartDate}
	if p.anchor.IsZero() {
		p.anchor = now
	}
	switch cfg.Interval.Unit {
	case UnitMinutes:
		p.step = time.Duration(cfg.Interval.Value) * time.Minute
	case UnitHours:
		p.step = time.Duration(cfg.Interval.Value) * time.Hour
	case UnitDays:
		p.days = cfg.Interval.Value
	case UnitWeeks:
		p.days = 7 * cfg.Interval.Value
	default:
		return nil, recurrence.NewConfigError("interval.unit", "unknown unit %q", cfg.Interval.Unit)
	}

	for _, s := range cfg.TimeSlots {
		t, err := recurrence.ParseTimeOfDay(s)
		if err != nil {
			return nil, recurrence.NewConfigError("time_slots", "%q is not HH:MM", s)
		}
		p.slots = append(p.slots, t.Civil())
	}
	return p, nil
}

// candidate returns the k-th candidate (k >= 1).
func (p *plan) candidate(k int) time.Time {
	if p.step > 0 {
		return p.anchor.Add(time.Duration(k) * p.step)
	}
	date := civil.DateOf(p.anchor.In(p.loc)).AddDays(k * p.days)
	at := p.cfg.Time.Civil()
	if len(p.slots) > 0 {
		at = p.slots[(k-1)%len(p.slots)]
	}
	return recurrence.At(date, at, p.loc)
}

// Generate produces cfg.NumberOfPosts candidates, one interval apart,
// starting one interval after the anchor (StartDate, or now when zero).
// Skipped candidates still use up a slot; nothing is backfilled.
//
// Candidates are checked in this order: weekend, holiday, after EndDate,
// then a minute-granularity match against existing, which makes a conflict.
// Configuration errors are returned before anything is generated.
func Generate(cfg Config, existing []time.Time) (Result, error) {
	res := Result{
		ScheduledDates: []time.Time{},
		Conflicts:      []time.Time{},
		SkippedDates:   []time.Time{},
		Entries:        []Entry{},
	}
	if cfg.NumberOfPosts <= 0 {
		return res, nil
	}
	p, err := cfg.plan(time.Now())
	if err != nil {
		return Result{}, err
	}

	taken := make(map[int64]struct{}, len(existing))
	for _, t := range existing {
		taken[minuteKey(t)] = struct{}{}
	}

	for k := 1; k <= cfg.NumberOfPosts; k++ {
		at := p.candidate(k)
		e := Entry{Index: k, At: at.UTC(), Status: StatusScheduled}
		local := at.In(p.loc)

		switch {
		case cfg.SkipWeekends && isWeekend(local.Weekday()):
			e.Status, e.Reason = StatusSkipped, SkipWeekend
		case cfg.SkipHolidays && cfg.Holidays.Contains(civil.DateOf(local)):
			e.Status, e.Reason = StatusSkipped, SkipHoliday
		case cfg.EndDate != nil && at.After(*cfg.EndDate):
			e.Status, e.Reason = StatusSkipped, SkipAfterEnd
		default:
			if _, ok := taken[minuteKey(at)]; ok {
				e.Status = StatusConflict
			}
		}

		switch e.Status {
		case StatusScheduled:
			res.ScheduledDates = append(res.ScheduledDates, e.At)
		case StatusConflict:
			res.Conflicts = append(res.Conflicts, e.At)
		case StatusSkipped:
			res.SkippedDates = append(res.SkippedDates, e.At)
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func minuteKey(t time.Time) int64 {
	return t.Truncate(time.Minute).Unix()
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
