package repository

import (
	"context"
	"errors"
	"time"

	"github.com/soochol/postplan/internal/postplan"
	memstore "github.com/soochol/postplan/internal/repository/memory"
)

// MemoryScheduleRepository stores schedules in memory.
type MemoryScheduleRepository struct {
	store *memstore.Store[*postplan.Schedule]
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{
		store: memstore.New(func(s *postplan.Schedule) string { return s.ID }, (*postplan.Schedule).Clone),
	}
}

func (r *MemoryScheduleRepository) Create(ctx context.Context, schedule *postplan.Schedule) error {
	return r.store.Set(ctx, schedule)
}

func (r *MemoryScheduleRepository) Get(ctx context.Context, id string) (*postplan.Schedule, error) {
	s, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *MemoryScheduleRepository) Update(ctx context.Context, schedule *postplan.Schedule) error {
	if err := r.store.Replace(ctx, schedule); errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryScheduleRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *MemoryScheduleRepository) List(ctx context.Context, userID string) ([]*postplan.Schedule, error) {
	return r.store.Filter(ctx,
		func(s *postplan.Schedule) bool { return s.UserID == userID },
		func(a, b *postplan.Schedule) int { return b.CreatedAt.Compare(a.CreatedAt) },
	), nil
}

func (r *MemoryScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*postplan.Schedule, error) {
	return r.store.Filter(ctx,
		func(s *postplan.Schedule) bool {
			return s.Enabled && s.NextRunAt != nil && !s.NextRunAt.After(now)
		},
		func(a, b *postplan.Schedule) int { return a.NextRunAt.Compare(*b.NextRunAt) },
	), nil
}
