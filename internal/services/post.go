package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/repository"
)

// PostService manages one-off posts.
type PostService struct {
	repo repository.PostRepository
	now  func() time.Time
}

func NewPostService(repo repository.PostRepository) *PostService {
	return &PostService{repo: repo, now: time.Now}
}

// Create validates p and stores it for userID. A post with ScheduledAt is
// scheduled, otherwise it is a draft.
func (s *PostService) Create(ctx context.Context, userID string, p *postplan.Post) error {
	platforms, err := normalizeTarget(p.Content, p.Platforms)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	p.ID = postplan.GenerateID("post")
	p.UserID = userID
	p.Platforms = platforms
	p.Status = statusFor(p.ScheduledAt)
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	slog.Info("post created", "id", p.ID, "status", p.Status)
	return nil
}

// Get returns the post if it belongs to userID.
func (s *PostService) Get(ctx context.Context, userID, id string) (*postplan.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *PostService) List(ctx context.Context, userID string) ([]*postplan.Post, error) {
	return s.repo.List(ctx, userID)
}

// Update replaces the editable fields of an existing post. Published and
// failed posts keep their status.
func (s *PostService) Update(ctx context.Context, userID string, p *postplan.Post) error {
	existing, err := s.Get(ctx, userID, p.ID)
	if err != nil {
		return err
	}
	platforms, err := normalizeTarget(p.Content, p.Platforms)
	if err != nil {
		return err
	}
	p.UserID = existing.UserID
	p.Platforms = platforms
	p.ScheduleID = existing.ScheduleID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	switch existing.Status {
	case postplan.PostPublished, postplan.PostFailed:
		p.Status = existing.Status
	default:
		p.Status = statusFor(p.ScheduledAt)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func statusFor(scheduledAt *time.Time) postplan.PostStatus {
	if scheduledAt != nil {
		return postplan.PostScheduled
	}
	return postplan.PostDraft
}
