package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/soochol/postplan/internal/postplan"
)

const scheduleColumns = `id, user_id, name, content, platforms, media_urls, recurrence, enabled, next_run_at, last_run_at, run_count, created_at, updated_at`

// CreateSchedule stores a new schedule.
func (d *DB) CreateSchedule(ctx context.Context, s *postplan.Schedule) error {
	recurrenceJSON, err := json.Marshal(s.Recurrence)
	if err != nil {
		return fmt.Errorf("marshal recurrence: %w", err)
	}

	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO schedules (`+scheduleColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.UserID, s.Name, s.Content, pq.Array(platformStrings(s.Platforms)), pq.Array(nonNil(s.MediaURLs)),
		recurrenceJSON, s.Enabled, s.NextRunAt, s.LastRunAt, s.RunCount, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID.
func (d *DB) GetSchedule(ctx context.Context, id string) (*postplan.Schedule, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %s: %w", id, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

// UpdateSchedule updates an existing schedule.
func (d *DB) UpdateSchedule(ctx context.Context, s *postplan.Schedule) error {
	recurrenceJSON, err := json.Marshal(s.Recurrence)
	if err != nil {
		return fmt.Errorf("marshal recurrence: %w", err)
	}

	res, err := d.Pool.ExecContext(ctx,
		`UPDATE schedules SET name = $1, content = $2, platforms = $3, media_urls = $4, recurrence = $5, enabled = $6, next_run_at = $7, last_run_at = $8, run_count = $9, updated_at = $10
		 WHERE id = $11`,
		s.Name, s.Content, pq.Array(platformStrings(s.Platforms)), pq.Array(nonNil(s.MediaURLs)),
		recurrenceJSON, s.Enabled, s.NextRunAt, s.LastRunAt, s.RunCount, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return rowsAffected(res, "update schedule", s.ID)
}

// DeleteSchedule removes a schedule by ID.
func (d *DB) DeleteSchedule(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return rowsAffected(res, "delete schedule", id)
}

// ListSchedules returns a user's schedules, newest first.
func (d *DB) ListSchedules(ctx context.Context, userID string) ([]*postplan.Schedule, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListDueSchedules returns enabled schedules whose next_run_at is at or before now.
func (d *DB) ListDueSchedules(ctx context.Context, now time.Time) ([]*postplan.Schedule, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE enabled = true AND next_run_at <= $1 ORDER BY next_run_at`, now,
	)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

func scanSchedule(row scanner) (*postplan.Schedule, error) {
	s := &postplan.Schedule{}
	var platforms, media []string
	var recurrenceJSON []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Content, pq.Array(&platforms), pq.Array(&media),
		&recurrenceJSON, &s.Enabled, &s.NextRunAt, &s.LastRunAt, &s.RunCount, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recurrenceJSON, &s.Recurrence); err != nil {
		return nil, fmt.Errorf("decode recurrence for %s: %w", s.ID, err)
	}
	s.Platforms = toPlatforms(platforms)
	if len(media) > 0 {
		s.MediaURLs = media
	}
	return s, nil
}

func scanSchedules(rows *sql.Rows) ([]*postplan.Schedule, error) {
	var result []*postplan.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
