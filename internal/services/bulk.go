package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soochol/postplan/internal/bulk"
	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/repository"
)

// BulkService previews and commits batches of scheduled posts.
type BulkService struct {
	posts    repository.PostRepository
	holidays bulk.HolidaySet
	now      func() time.Time
}

// NewBulkService creates a BulkService. holidays are merged into every
// request's own holiday list.
func NewBulkService(posts repository.PostRepository, holidays bulk.HolidaySet) *BulkService {
	return &BulkService{posts: posts, holidays: holidays, now: time.Now}
}

// Preview classifies the candidates of cfg against userID's pending posts.
func (s *BulkService) Preview(ctx context.Context, userID string, cfg bulk.Config) (bulk.Result, error) {
	existing, err := s.existing(ctx, userID)
	if err != nil {
		return bulk.Result{}, err
	}
	cfg.Holidays = s.holidays.Merge(cfg.Holidays)
	return bulk.Generate(cfg, existing)
}

// Commit generates the batch and creates one scheduled post per scheduled
// date from the draft template. Either every post is created or none is.
func (s *BulkService) Commit(ctx context.Context, userID string, cfg bulk.Config, draft postplan.Post) (bulk.Result, []*postplan.Post, error) {
	platforms, err := normalizeTarget(draft.Content, draft.Platforms)
	if err != nil {
		return bulk.Result{}, nil, err
	}
	res, err := s.Preview(ctx, userID, cfg)
	if err != nil {
		return bulk.Result{}, nil, err
	}

	now := s.now().UTC()
	created := make([]*postplan.Post, 0, len(res.ScheduledDates))
	for _, at := range res.ScheduledDates {
		at := at
		p := &postplan.Post{
			ID:          postplan.GenerateID("post"),
			UserID:      userID,
			Content:     draft.Content,
			Platforms:   platforms,
			MediaURLs:   draft.MediaURLs,
			ScheduledAt: &at,
			Status:      postplan.PostScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.posts.Create(ctx, p); err != nil {
			s.rollback(ctx, created)
			return bulk.Result{}, nil, fmt.Errorf("create bulk post %d of %d: %w", len(created)+1, len(res.ScheduledDates), err)
		}
		created = append(created, p)
	}
	slog.Info("bulk posts committed", "user", userID, "created", len(created),
		"conflicts", len(res.Conflicts), "skipped", len(res.SkippedDates))
	return res, created, nil
}

func (s *BulkService) rollback(ctx context.Context, created []*postplan.Post) {
	for _, p := range created {
		if err := s.posts.Delete(ctx, p.ID); err != nil {
			slog.Warn("bulk rollback: failed to delete post", "id", p.ID, "err", err)
		}
	}
}

func (s *BulkService) existing(ctx context.Context, userID string) ([]time.Time, error) {
	posts, err := s.posts.ListScheduled(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("list scheduled posts: %w", err)
	}
	out := make([]time.Time, 0, len(posts))
	for _, p := range posts {
		if p.ScheduledAt != nil {
			out = append(out, *p.ScheduledAt)
		}
	}
	return out, nil
}
