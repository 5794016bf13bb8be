package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/soochol/postplan/internal/bulk"
	"github.com/soochol/postplan/internal/calendar"
	"github.com/soochol/postplan/internal/recurrence"
	"github.com/soochol/postplan/internal/repository"
)

// CalendarService renders month views of a user's posts.
type CalendarService struct {
	posts     repository.PostRepository
	weekStart time.Weekday
}

func NewCalendarService(posts repository.PostRepository, weekStart time.Weekday) *CalendarService {
	return &CalendarService{posts: posts, weekStart: weekStart}
}

// Month projects userID's pending posts, and the optional bulk preview, onto
// the six-week grid of year/month in timezone tz.
func (s *CalendarService) Month(ctx context.Context, userID string, year int, month time.Month, tz string, preview *bulk.Result) ([]calendar.Day, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d is outside 1-12", ErrInvalidInput, month)
	}
	loc, err := recurrence.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	grid := calendar.MonthGrid(year, month, s.weekStart)
	from := recurrence.At(grid[0], civil.Time{}, loc)
	to := recurrence.At(grid[len(grid)-1].AddDays(1), civil.Time{}, loc)

	posts, err := s.posts.ListScheduled(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list scheduled posts: %w", err)
	}
	var marks calendar.Marks
	for _, p := range posts {
		if p.ScheduledAt != nil {
			marks.Existing = append(marks.Existing, *p.ScheduledAt)
		}
	}
	if preview != nil {
		marks.Scheduled = preview.ScheduledDates
		marks.Conflicts = preview.Conflicts
		marks.Skipped = preview.SkippedDates
	}
	return calendar.ProjectMonth(year, month, s.weekStart, marks, loc), nil
}
