package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/recurrence"
	"github.com/soochol/postplan/internal/repository"
)

const (
	defaultPreviewCount = 5
	maxPreviewCount     = 100
)

// ScheduleService manages recurring post schedules. Materializing due
// occurrences is the dispatcher's job; this service keeps NextRunAt current
// whenever a schedule is created, edited or resumed.
type ScheduleService struct {
	repo repository.ScheduleRepository
	now  func() time.Time
}

func NewScheduleService(repo repository.ScheduleRepository) *ScheduleService {
	return &ScheduleService{repo: repo, now: time.Now}
}

// Preview is a dry run of a recurrence config.
type Preview struct {
	Description string      `json:"description"`
	Occurrences []time.Time `json:"occurrences"`
}

// Create validates the template and recurrence, computes the first run and
// stores the schedule enabled.
func (s *ScheduleService) Create(ctx context.Context, userID string, sched *postplan.Schedule) error {
	platforms, err := normalizeTarget(sched.Content, sched.Platforms)
	if err != nil {
		return err
	}
	next, err := s.firstRun(sched.Recurrence)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	sched.ID = postplan.GenerateID("sched")
	sched.UserID = userID
	sched.Platforms = platforms
	sched.Enabled = true
	sched.NextRunAt = &next
	sched.LastRunAt = nil
	sched.RunCount = 0
	sched.CreatedAt = now
	sched.UpdatedAt = now
	if sched.Name == "" {
		sched.Name = sched.Description()
	}
	if err := s.repo.Create(ctx, sched); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	slog.Info("schedule created", "id", sched.ID, "next_run_at", next)
	return nil
}

// Get returns the schedule if it belongs to userID.
func (s *ScheduleService) Get(ctx context.Context, userID, id string) (*postplan.Schedule, error) {
	sched, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return sched, nil
}

func (s *ScheduleService) List(ctx context.Context, userID string) ([]*postplan.Schedule, error) {
	return s.repo.List(ctx, userID)
}

// Update replaces the template and recurrence. Run history is kept and the
// next run is recomputed from now for enabled schedules.
func (s *ScheduleService) Update(ctx context.Context, userID string, sched *postplan.Schedule) error {
	existing, err := s.Get(ctx, userID, sched.ID)
	if err != nil {
		return err
	}
	platforms, err := normalizeTarget(sched.Content, sched.Platforms)
	if err != nil {
		return err
	}
	if err := sched.Recurrence.Validate(); err != nil {
		return err
	}

	sched.UserID = existing.UserID
	sched.Platforms = platforms
	sched.Enabled = existing.Enabled
	sched.LastRunAt = existing.LastRunAt
	sched.RunCount = existing.RunCount
	sched.CreatedAt = existing.CreatedAt
	sched.NextRunAt = existing.NextRunAt
	if sched.Name == "" {
		sched.Name = existing.Name
	}
	if sched.Enabled {
		next, err := s.firstRun(sched.Recurrence)
		if err != nil {
			return err
		}
		sched.NextRunAt = &next
	}
	sched.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, sched); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

func (s *ScheduleService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Pause disables the schedule without touching its recurrence.
func (s *ScheduleService) Pause(ctx context.Context, userID, id string) (*postplan.Schedule, error) {
	sched, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sched.Enabled = false
	sched.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, fmt.Errorf("pause schedule: %w", err)
	}
	slog.Info("schedule paused", "id", id)
	return sched, nil
}

// Resume re-enables the schedule with the next run computed from now, so
// occurrences missed while paused are not replayed.
func (s *ScheduleService) Resume(ctx context.Context, userID, id string) (*postplan.Schedule, error) {
	sched, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next, err := s.firstRun(sched.Recurrence)
	if err != nil {
		return nil, err
	}
	sched.Enabled = true
	sched.NextRunAt = &next
	sched.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, sched); err != nil {
		return nil, fmt.Errorf("resume schedule: %w", err)
	}
	slog.Info("schedule resumed", "id", id, "next_run_at", next)
	return sched, nil
}

// Preview describes cfg and lists up to count occurrences after from.
// count defaults to 5 and is capped at 100; a zero from means now.
func (s *ScheduleService) Preview(cfg recurrence.Config, from time.Time, count int) (Preview, error) {
	if count <= 0 {
		count = defaultPreviewCount
	}
	count = min(count, maxPreviewCount)
	if from.IsZero() {
		from = s.now()
	}
	occ, err := recurrence.Occurrences(cfg, from, count)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Description: recurrence.Describe(cfg), Occurrences: occ}, nil
}

func (s *ScheduleService) firstRun(cfg recurrence.Config) (time.Time, error) {
	next, ok, err := recurrence.NextOccurrence(cfg, s.now())
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, ErrNoOccurrence
	}
	return next, nil
}
