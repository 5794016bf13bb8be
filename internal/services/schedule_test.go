package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/recurrence"
	"github.com/soochol/postplan/internal/repository"
)

// Wednesday, 2024-05-01 08:00 UTC.
var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestScheduleService() (*ScheduleService, *repository.MemoryScheduleRepository) {
	repo := repository.NewMemoryScheduleRepository()
	svc := NewScheduleService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func dailyAtNine() recurrence.Config {
	return recurrence.Config{
		Frequency: recurrence.FrequencyDaily,
		Time:      recurrence.TimeOfDay{Hour: 9},
		Timezone:  "UTC",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestScheduleService_CreateComputesNextRun(t *testing.T) {
	svc, _ := newTestScheduleService()
	s := &postplan.Schedule{Content: "daily tip", Platforms: []postplan.Platform{postplan.PlatformTwitter}, Recurrence: dailyAtNine()}

	require.NoError(t, svc.Create(context.Background(), "u1", s))
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.Enabled)
	require.NotNil(t, s.NextRunAt)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), *s.NextRunAt)
	assert.Equal(t, "Daily at 9:00 AM", s.Name)
}

func TestScheduleService_CreateRejects(t *testing.T) {
	svc, _ := newTestScheduleService()
	ctx := context.Background()

	bad := dailyAtNine()
	bad.Frequency = "hourly"
	err := svc.Create(ctx, "u1", &postplan.Schedule{Content: "x", Platforms: []postplan.Platform{postplan.PlatformTwitter}, Recurrence: bad})
	assert.ErrorIs(t, err, recurrence.ErrInvalidConfig)

	past := recurrence.Config{
		Frequency: recurrence.FrequencyOnce,
		Time:      recurrence.TimeOfDay{Hour: 9},
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	err = svc.Create(ctx, "u1", &postplan.Schedule{Content: "x", Platforms: []postplan.Platform{postplan.PlatformTwitter}, Recurrence: past})
	assert.ErrorIs(t, err, ErrNoOccurrence)

	err = svc.Create(ctx, "u1", &postplan.Schedule{Recurrence: dailyAtNine()})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleService_PauseResume(t *testing.T) {
	svc, repo := newTestScheduleService()
	ctx := context.Background()
	s := &postplan.Schedule{Content: "tip", Platforms: []postplan.Platform{postplan.PlatformTwitter}, Recurrence: dailyAtNine()}
	require.NoError(t, svc.Create(ctx, "u1", s))

	paused, err := svc.Pause(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.False(t, paused.Enabled)

	due, _ := repo.ListDue(ctx, fixedNow.Add(48*time.Hour))
	assert.Empty(t, due, "paused schedules are never due")

	// Two days later the resumed schedule picks up from the new now.
	svc.now = func() time.Time { return fixedNow.Add(49 * time.Hour) }
	resumed, err := svc.Resume(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.True(t, resumed.Enabled)
	assert.Equal(t, time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC), *resumed.NextRunAt)

	_, err = svc.Pause(ctx, "someone-else", s.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleService_UpdateKeepsHistory(t *testing.T) {
	svc, repo := newTestScheduleService()
	ctx := context.Background()
	s := &postplan.Schedule{Content: "tip", Platforms: []postplan.Platform{postplan.PlatformTwitter}, Recurrence: dailyAtNine()}
	require.NoError(t, svc.Create(ctx, "u1", s))

	stored, _ := repo.Get(ctx, s.ID)
	stored.RunCount = 4
	require.NoError(t, repo.Update(ctx, stored))

	cfg := dailyAtNine()
	cfg.Time = recurrence.TimeOfDay{Hour: 7, Minute: 30}
	edit := &postplan.Schedule{ID: s.ID, Content: "new tip", Platforms: []postplan.Platform{postplan.PlatformFacebook}, Recurrence: cfg}
	require.NoError(t, svc.Update(ctx, "u1", edit))

	got, err := svc.Get(ctx, "u1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.RunCount)
	assert.Equal(t, "new tip", got.Content)
	assert.Equal(t, time.Date(2024, 5, 2, 7, 30, 0, 0, time.UTC), *got.NextRunAt)
}

func TestScheduleService_Preview(t *testing.T) {
	svc, _ := newTestScheduleService()

	cfg := recurrence.Config{
		Frequency: recurrence.FrequencyWeekly,
		Time:      recurrence.TimeOfDay{Hour: 9},
		Days:      []int{1, 3},
		Timezone:  "UTC",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	p, err := svc.Preview(cfg, time.Time{}, 3)
	require.NoError(t, err)
	assert.Equal(t, "Weekly on Monday, Wednesday at 9:00 AM", p.Description)
	assert.Equal(t, []time.Time{
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC),
	}, p.Occurrences)

	p, err = svc.Preview(cfg, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, p.Occurrences, defaultPreviewCount)

	cfg.Timezone = "Mars/Olympus"
	_, err = svc.Preview(cfg, time.Time{}, 3)
	var cerr *recurrence.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "timezone", cerr.Field)
}
