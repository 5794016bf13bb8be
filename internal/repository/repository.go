// Package repository defines storage interfaces for posts and schedules.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/soochol/postplan/internal/postplan"
)

// ErrNotFound is returned when a requested post or schedule does not exist.
var ErrNotFound = errors.New("not found")

// PostRepository abstracts post persistence so callers don't need to know
// whether storage is in-memory, PostgreSQL, or a mix.
type PostRepository interface {
	Create(ctx context.Context, post *postplan.Post) error
	Get(ctx context.Context, id string) (*postplan.Post, error)
	Update(ctx context.Context, post *postplan.Post) error
	Delete(ctx context.Context, id string) error
	// List returns the user's posts, newest first.
	List(ctx context.Context, userID string) ([]*postplan.Post, error)
	// ListScheduled returns the user's pending posts with ScheduledAt in
	// [from, to), ordered by ScheduledAt. A zero to means no upper bound.
	ListScheduled(ctx context.Context, userID string, from, to time.Time) ([]*postplan.Post, error)
}

// ScheduleRepository abstracts persistence for recurring schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *postplan.Schedule) error
	Get(ctx context.Context, id string) (*postplan.Schedule, error)
	Update(ctx context.Context, schedule *postplan.Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, userID string) ([]*postplan.Schedule, error)
	// ListDue returns enabled schedules whose NextRunAt is at or before now,
	// across all users.
	ListDue(ctx context.Context, now time.Time) ([]*postplan.Schedule, error)
}
