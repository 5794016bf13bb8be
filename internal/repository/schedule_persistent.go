package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soochol/postplan/internal/postplan"
)

// ScheduleDB defines the DB-layer methods needed by the persistent schedule repo.
// *db.DB satisfies this interface.
type ScheduleDB interface {
	CreateSchedule(ctx context.Context, s *postplan.Schedule) error
	GetSchedule(ctx context.Context, id string) (*postplan.Schedule, error)
	UpdateSchedule(ctx context.Context, s *postplan.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedules(ctx context.Context, userID string) ([]*postplan.Schedule, error)
	ListDueSchedules(ctx context.Context, now time.Time) ([]*postplan.Schedule, error)
}

// PersistentScheduleRepository wraps a MemoryScheduleRepository with a PostgreSQL backend.
// Writes go to both stores. Reads try memory first, falling back to the database.
type PersistentScheduleRepository struct {
	mem *MemoryScheduleRepository
	db  ScheduleDB
}

func NewPersistentScheduleRepository(mem *MemoryScheduleRepository, db ScheduleDB) *PersistentScheduleRepository {
	return &PersistentScheduleRepository{mem: mem, db: db}
}

func (r *PersistentScheduleRepository) Create(ctx context.Context, s *postplan.Schedule) error {
	if err := r.db.CreateSchedule(ctx, s); err != nil {
		return fmt.Errorf("db create schedule: %w", err)
	}
	_ = r.mem.Create(ctx, s)
	return nil
}

func (r *PersistentScheduleRepository) Get(ctx context.Context, id string) (*postplan.Schedule, error) {
	if s, err := r.mem.Get(ctx, id); err == nil {
		return s, nil
	}
	s, err := r.db.GetSchedule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db get schedule: %w", err)
	}
	_ = r.mem.Create(ctx, s)
	return s, nil
}

func (r *PersistentScheduleRepository) Update(ctx context.Context, s *postplan.Schedule) error {
	memErr := r.mem.Update(ctx, s)
	err := r.db.UpdateSchedule(ctx, s)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if memErr != nil {
			return ErrNotFound
		}
		slog.Warn("schedule missing from db, updated in memory only", "id", s.ID)
		return nil
	case err != nil:
		return fmt.Errorf("db update schedule: %w", err)
	}
	if memErr != nil {
		_ = r.mem.Create(ctx, s)
	}
	return nil
}

func (r *PersistentScheduleRepository) Delete(ctx context.Context, id string) error {
	memErr := r.mem.Delete(ctx, id)
	err := r.db.DeleteSchedule(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if memErr != nil {
			return ErrNotFound
		}
		return nil
	case err != nil:
		return fmt.Errorf("db delete schedule: %w", err)
	}
	return nil
}

func (r *PersistentScheduleRepository) List(ctx context.Context, userID string) ([]*postplan.Schedule, error) {
	schedules, err := r.db.ListSchedules(ctx, userID)
	if err == nil {
		return schedules, nil
	}
	slog.Warn("db list schedules failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx, userID)
}

func (r *PersistentScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*postplan.Schedule, error) {
	schedules, err := r.db.ListDueSchedules(ctx, now)
	if err == nil {
		return schedules, nil
	}
	slog.Warn("db list due schedules failed, falling back to in-memory", "err", err)
	return r.mem.ListDue(ctx, now)
}
