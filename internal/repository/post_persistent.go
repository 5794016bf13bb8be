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

// PostDB defines the DB-layer methods needed by the persistent post repo.
// *db.DB satisfies this interface. Missing rows are reported as errors
// wrapping sql.ErrNoRows.
type PostDB interface {
	CreatePost(ctx context.Context, p *postplan.Post) error
	GetPost(ctx context.Context, id string) (*postplan.Post, error)
	UpdatePost(ctx context.Context, p *postplan.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, userID string) ([]*postplan.Post, error)
	ListScheduledPosts(ctx context.Context, userID string, from, to time.Time) ([]*postplan.Post, error)
}

// PersistentPostRepository wraps MemoryPostRepository with a PostgreSQL backend.
// Writes go to both. Reads try memory first; on miss, fall back to DB and cache.
// Listings prefer the DB and fall back to memory when it is unavailable.
type PersistentPostRepository struct {
	mem *MemoryPostRepository
	db  PostDB
}

func NewPersistentPostRepository(mem *MemoryPostRepository, db PostDB) *PersistentPostRepository {
	return &PersistentPostRepository{mem: mem, db: db}
}

func (r *PersistentPostRepository) Create(ctx context.Context, p *postplan.Post) error {
	if err := r.db.CreatePost(ctx, p); err != nil {
		return fmt.Errorf("db create post: %w", err)
	}
	_ = r.mem.Create(ctx, p)
	return nil
}

func (r *PersistentPostRepository) Get(ctx context.Context, id string) (*postplan.Post, error) {
	if p, err := r.mem.Get(ctx, id); err == nil {
		return p, nil
	}
	p, err := r.db.GetPost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db get post: %w", err)
	}
	_ = r.mem.Create(ctx, p)
	return p, nil
}

func (r *PersistentPostRepository) Update(ctx context.Context, p *postplan.Post) error {
	memErr := r.mem.Update(ctx, p)
	err := r.db.UpdatePost(ctx, p)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if memErr != nil {
			return ErrNotFound
		}
		slog.Warn("post missing from db, updated in memory only", "id", p.ID)
		return nil
	case err != nil:
		return fmt.Errorf("db update post: %w", err)
	}
	if memErr != nil {
		_ = r.mem.Create(ctx, p)
	}
	return nil
}

func (r *PersistentPostRepository) Delete(ctx context.Context, id string) error {
	memErr := r.mem.Delete(ctx, id)
	err := r.db.DeletePost(ctx, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if memErr != nil {
			return ErrNotFound
		}
		return nil
	case err != nil:
		return fmt.Errorf("db delete post: %w", err)
	}
	return nil
}

func (r *PersistentPostRepository) List(ctx context.Context, userID string) ([]*postplan.Post, error) {
	posts, err := r.db.ListPosts(ctx, userID)
	if err == nil {
		return posts, nil
	}
	slog.Warn("db list posts failed, falling back to in-memory", "err", err)
	return r.mem.List(ctx, userID)
}

func (r *PersistentPostRepository) ListScheduled(ctx context.Context, userID string, from, to time.Time) ([]*postplan.Post, error) {
	posts, err := r.db.ListScheduledPosts(ctx, userID, from, to)
	if err == nil {
		return posts, nil
	}
	slog.Warn("db list scheduled posts failed, falling back to in-memory", "err", err)
	return r.mem.ListScheduled(ctx, userID, from, to)
}
