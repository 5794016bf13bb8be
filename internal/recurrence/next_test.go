package recurrence

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		from string
		want string // empty means no occurrence
	}{
		{
			name: "weekly days after anchor time",
			cfg: Config{
				Frequency: FrequencyWeekly,
				Days:      []int{1, 3, 5},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-01T10:00:00Z",
			want: "2024-01-03T09:00:00Z",
		},
		{
			name: "weekly days before anchor time returns anchor",
			cfg: Config{
				Frequency: FrequencyWeekly,
				Days:      []int{1, 3, 5},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-01T08:00:00Z",
			want: "2024-01-01T09:00:00Z",
		},
		{
			name: "weekly days wraps into next week",
			cfg: Config{
				Frequency: FrequencyWeekly,
				Days:      []int{1, 3, 5},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-05T09:30:00Z",
			want: "2024-01-08T09:00:00Z",
		},
		{
			name: "weekly without days keeps anchor weekday",
			cfg: Config{
				Frequency: FrequencyWeekly,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-10T12:00:00Z",
			want: "2024-01-15T09:00:00Z",
		},
		{
			name: "monthly day 31 skips february",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Days:      []int{31},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-31T00:00:00Z"),
			},
			from: "2024-02-01T00:00:00Z",
			want: "2024-03-31T09:00:00Z",
		},
		{
			name: "monthly multiple days picks earliest remaining this month",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Days:      []int{15, 1, 20},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-16T00:00:00Z",
			want: "2024-01-20T09:00:00Z",
		},
		{
			name: "monthly multiple days rolls to next month",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Days:      []int{15, 1},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-15T09:00:00Z",
			want: "2024-02-01T09:00:00Z",
		},
		{
			name: "monthly without days uses anchor day",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Time:      TimeOfDay{18, 30},
				Timezone:  "UTC",
				StartDate: utc("2024-01-10T00:00:00Z"),
			},
			from: "2024-03-11T00:00:00Z",
			want: "2024-04-10T18:30:00Z",
		},
		{
			name: "monthly without days clamps to short months",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-31T00:00:00Z"),
			},
			from: "2024-02-01T00:00:00Z",
			want: "2024-02-29T09:00:00Z",
		},
		{
			name: "monthly without days returns to anchor day after a short month",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-31T00:00:00Z"),
			},
			from: "2024-02-29T09:00:00Z",
			want: "2024-03-31T09:00:00Z",
		},
		{
			name: "monthly december rolls year",
			cfg: Config{
				Frequency: FrequencyMonthly,
				Days:      []int{5},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-05T00:00:00Z"),
			},
			from: "2024-12-06T00:00:00Z",
			want: "2025-01-05T09:00:00Z",
		},
		{
			name: "daily later the same day",
			cfg: Config{
				Frequency: FrequencyDaily,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-05T08:00:00Z",
			want: "2024-01-05T09:00:00Z",
		},
		{
			name: "daily next day",
			cfg: Config{
				Frequency: FrequencyDaily,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
			},
			from: "2024-01-05T10:00:00Z",
			want: "2024-01-06T09:00:00Z",
		},
		{
			name: "once in the future returns anchor with time applied",
			cfg: Config{
				Frequency: FrequencyOnce,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-06-01T15:30:00Z"),
			},
			from: "2024-01-01T00:00:00Z",
			want: "2024-06-01T09:00:00Z",
		},
		{
			name: "once in the past has no occurrence",
			cfg: Config{
				Frequency: FrequencyOnce,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2023-06-01T00:00:00Z"),
			},
			from: "2024-01-01T00:00:00Z",
		},
		{
			name: "once ignores days",
			cfg: Config{
				Frequency: FrequencyOnce,
				Days:      []int{42},
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-06-01T00:00:00Z"),
			},
			from: "2024-01-01T00:00:00Z",
			want: "2024-06-01T09:00:00Z",
		},
		{
			name: "anchor date is taken in the schedule zone",
			cfg: Config{
				Frequency: FrequencyOnce,
				Time:      TimeOfDay{9, 0},
				Timezone:  "America/New_York",
				StartDate: utc("2024-07-04T00:00:00Z"),
			},
			from: "2024-01-01T00:00:00Z",
			want: "2024-07-03T13:00:00Z",
		},
		{
			name: "daily keeps wall clock across spring forward",
			cfg: Config{
				Frequency: FrequencyDaily,
				Time:      TimeOfDay{9, 0},
				Timezone:  "America/New_York",
				StartDate: utc("2024-03-01T14:00:00Z"),
			},
			from: "2024-03-09T15:00:00Z",
			want: "2024-03-10T13:00:00Z",
		},
		{
			name: "end date allows an equal occurrence",
			cfg: Config{
				Frequency: FrequencyDaily,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
				EndDate:   ptr(utc("2024-01-03T09:00:00Z")),
			},
			from: "2024-01-02T10:00:00Z",
			want: "2024-01-03T09:00:00Z",
		},
		{
			name: "occurrence past end date",
			cfg: Config{
				Frequency: FrequencyDaily,
				Time:      TimeOfDay{9, 0},
				Timezone:  "UTC",
				StartDate: utc("2024-01-01T00:00:00Z"),
				EndDate:   ptr(utc("2024-01-03T09:00:00Z")),
			},
			from: "2024-01-03T10:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := NextOccurrence(tt.cfg, utc(tt.from))
			require.NoError(t, err)
			if tt.want == "" {
				assert.False(t, ok, "expected no occurrence, got %v", got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, utc(tt.want), got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNextOccurrence_Monotonic(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	configs := []Config{
		{Frequency: FrequencyDaily, Time: TimeOfDay{2, 30}},
		{Frequency: FrequencyWeekly, Days: []int{1, 3, 5}, Time: TimeOfDay{9, 0}},
		{Frequency: FrequencyWeekly, Time: TimeOfDay{23, 59}},
		{Frequency: FrequencyMonthly, Days: []int{5, 29, 31}, Time: TimeOfDay{12, 0}},
		{Frequency: FrequencyMonthly, Time: TimeOfDay{0, 0}},
	}

	start := utc("2024-01-31T06:00:00Z")
	for _, cfg := range configs {
		cfg.Timezone = "Europe/Berlin"
		cfg.StartDate = start
		for h := 0; h < 24*400; h += 7 {
			from := start.Add(time.Duration(h) * time.Hour)
			got, ok, err := NextOccurrence(cfg, from)
			require.NoError(t, err)
			require.True(t, ok, "%s from %v", cfg.Frequency, from)
			require.True(t, got.After(from), "%s: %v is not after %v", cfg.Frequency, got, from)

			local := got.In(loc)
			assert.Equal(t, cfg.Time.Minute, local.Minute())
			switch cfg.Frequency {
			case FrequencyWeekly:
				days := cfg.Days
				if len(days) == 0 {
					days = []int{int(start.In(loc).Weekday())}
				}
				assert.Contains(t, days, int(local.Weekday()))
			case FrequencyMonthly:
				days := cfg.Days
				if len(days) == 0 {
					lastDay := DaysIn(local.Year(), local.Month())
					days = []int{min(start.In(loc).Day(), lastDay)}
				}
				assert.True(t, slices.Contains(days, local.Day()), "day %d not in %v", local.Day(), days)
			}
		}
	}
}

func TestNextOccurrence_ZeroFromMeansNow(t *testing.T) {
	cfg := Config{Frequency: FrequencyDaily, Time: TimeOfDay{9, 0}, StartDate: utc("2024-01-01T00:00:00Z")}
	before := time.Now()
	got, ok, err := NextOccurrence(cfg, time.Time{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.After(before))
	assert.True(t, got.Before(before.Add(25*time.Hour)))
}

func TestNextOccurrence_InvalidConfig(t *testing.T) {
	base := Config{Frequency: FrequencyDaily, Time: TimeOfDay{9, 0}, StartDate: utc("2024-01-01T00:00:00Z")}

	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"hour", func(c *Config) { c.Time.Hour = 24 }, "time.hour"},
		{"minute", func(c *Config) { c.Time.Minute = -1 }, "time.minute"},
		{"frequency", func(c *Config) { c.Frequency = "hourly" }, "frequency"},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"start", func(c *Config) { c.StartDate = time.Time{} }, "start_date"},
		{"weekday", func(c *Config) { c.Frequency = FrequencyWeekly; c.Days = []int{7} }, "days"},
		{"month day", func(c *Config) { c.Frequency = FrequencyMonthly; c.Days = []int{0} }, "days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mut(&cfg)
			_, _, err := NextOccurrence(cfg, utc("2024-01-02T00:00:00Z"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestOccurrences(t *testing.T) {
	cfg := Config{
		Frequency: FrequencyWeekly,
		Days:      []int{1, 3, 5},
		Time:      TimeOfDay{9, 0},
		StartDate: utc("2024-01-01T00:00:00Z"),
	}
	got, err := Occurrences(cfg, utc("2024-01-01T10:00:00Z"), 4)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		utc("2024-01-03T09:00:00Z"),
		utc("2024-01-05T09:00:00Z"),
		utc("2024-01-08T09:00:00Z"),
		utc("2024-01-10T09:00:00Z"),
	}, got)

	once := Config{Frequency: FrequencyOnce, Time: TimeOfDay{9, 0}, StartDate: utc("2024-06-01T00:00:00Z")}
	got, err = Occurrences(once, utc("2024-01-01T00:00:00Z"), 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	bounded := cfg
	bounded.EndDate = ptr(utc("2024-01-06T00:00:00Z"))
	got, err = Occurrences(bounded, utc("2024-01-01T10:00:00Z"), 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("07:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{7, 5}, got)
	assert.Equal(t, "07:05", got.String())

	for _, bad := range []string{"", "7", "25:00", "10:60", "aa:bb"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, ErrInvalidConfig, bad)
	}
}
