package repository

import (
	"context"
	"errors"
	"time"

	"github.com/soochol/postplan/internal/postplan"
	memstore "github.com/soochol/postplan/internal/repository/memory"
)

// MemoryPostRepository stores posts in memory.
type MemoryPostRepository struct {
	store *memstore.Store[*postplan.Post]
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		store: memstore.New(func(p *postplan.Post) string { return p.ID }, (*postplan.Post).Clone),
	}
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *postplan.Post) error {
	return r.store.Set(ctx, post)
}

func (r *MemoryPostRepository) Get(ctx context.Context, id string) (*postplan.Post, error) {
	p, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *MemoryPostRepository) Update(ctx context.Context, post *postplan.Post) error {
	if err := r.store.Replace(ctx, post); errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryPostRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *MemoryPostRepository) List(ctx context.Context, userID string) ([]*postplan.Post, error) {
	return r.store.Filter(ctx,
		func(p *postplan.Post) bool { return p.UserID == userID },
		func(a, b *postplan.Post) int { return b.CreatedAt.Compare(a.CreatedAt) },
	), nil
}

func (r *MemoryPostRepository) ListScheduled(ctx context.Context, userID string, from, to time.Time) ([]*postplan.Post, error) {
	return r.store.Filter(ctx,
		func(p *postplan.Post) bool {
			if p.UserID != userID || !p.Status.Pending() || p.ScheduledAt == nil {
				return false
			}
			at := *p.ScheduledAt
			return !at.Before(from) && (to.IsZero() || at.Before(to))
		},
		func(a, b *postplan.Post) int { return a.ScheduledAt.Compare(*b.ScheduledAt) },
	), nil
}
