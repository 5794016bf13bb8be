package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/soochol/postplan/internal/postplan"
)

const postColumns = `id, user_id, content, platforms, media_urls, scheduled_at, status, schedule_id, created_at, updated_at`

// CreatePost stores a new post.
func (d *DB) CreatePost(ctx context.Context, p *postplan.Post) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.UserID, p.Content, pq.Array(platformStrings(p.Platforms)), pq.Array(nonNil(p.MediaURLs)),
		p.ScheduledAt, string(p.Status), p.ScheduleID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID.
func (d *DB) GetPost(ctx context.Context, id string) (*postplan.Post, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post not found: %s: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// UpdatePost updates an existing post.
func (d *DB) UpdatePost(ctx context.Context, p *postplan.Post) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE posts SET content = $1, platforms = $2, media_urls = $3, scheduled_at = $4, status = $5, schedule_id = $6, updated_at = $7
		 WHERE id = $8`,
		p.Content, pq.Array(platformStrings(p.Platforms)), pq.Array(nonNil(p.MediaURLs)),
		p.ScheduledAt, string(p.Status), p.ScheduleID, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return rowsAffected(res, "update post", p.ID)
}

// DeletePost removes a post by ID.
func (d *DB) DeletePost(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return rowsAffected(res, "delete post", id)
}

// ListPosts returns a user's posts, newest first.
func (d *DB) ListPosts(ctx context.Context, userID string) ([]*postplan.Post, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ListScheduledPosts returns a user's pending posts with scheduled_at in
// [from, to), ordered by scheduled_at. A zero to leaves the range open.
func (d *DB) ListScheduledPosts(ctx context.Context, userID string, from, to time.Time) ([]*postplan.Post, error) {
	var upper any
	if !to.IsZero() {
		upper = to
	}
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE user_id = $1 AND status = ANY($2) AND scheduled_at >= $3 AND ($4::timestamptz IS NULL OR scheduled_at < $4)
		 ORDER BY scheduled_at`,
		userID, pq.Array([]string{string(postplan.PostScheduled), string(postplan.PostQueued)}), from, upper,
	)
	if err != nil {
		return nil, fmt.Errorf("list scheduled posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*postplan.Post, error) {
	p := &postplan.Post{}
	var platforms, media []string
	var status string
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, pq.Array(&platforms), pq.Array(&media),
		&p.ScheduledAt, &status, &p.ScheduleID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Platforms = toPlatforms(platforms)
	if len(media) > 0 {
		p.MediaURLs = media
	}
	p.Status = postplan.PostStatus(status)
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]*postplan.Post, error) {
	var result []*postplan.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func platformStrings(ps []postplan.Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func toPlatforms(ss []string) []postplan.Platform {
	out := make([]postplan.Platform, len(ss))
	for i, s := range ss {
		out[i] = postplan.Platform(s)
	}
	return out
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
