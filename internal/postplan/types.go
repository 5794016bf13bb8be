package postplan

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/soochol/postplan/internal/recurrence"
)

// --- Platforms ---

// Platform identifies a social network a post is published to.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformMastodon  Platform = "mastodon"
)

// Platforms lists every supported platform.
var Platforms = []Platform{PlatformTwitter, PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformMastodon}

// ParsePlatform normalizes a platform name. "x" is accepted for twitter.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "x" {
		return PlatformTwitter, nil
	}
	if !slices.Contains(Platforms, p) {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// --- Posts ---

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostScheduled PostStatus = "scheduled"
	PostQueued    PostStatus = "queued" // materialized from a recurring schedule, awaiting publish
	PostPublished PostStatus = "published"
	PostFailed    PostStatus = "failed"
)

// Pending reports whether the post still occupies its scheduled slot.
func (s PostStatus) Pending() bool {
	return s == PostScheduled || s == PostQueued
}

// Post is a single piece of content targeted at one or more platforms.
type Post struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Content     string     `json:"content"`
	Platforms   []Platform `json:"platforms"`
	MediaURLs   []string   `json:"media_urls,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      PostStatus `json:"status"`
	ScheduleID  string     `json:"schedule_id,omitempty"` // set when created by a recurring schedule
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy.
func (p *Post) Clone() *Post {
	c := *p
	c.Platforms = slices.Clone(p.Platforms)
	c.MediaURLs = slices.Clone(p.MediaURLs)
	if p.ScheduledAt != nil {
		t := *p.ScheduledAt
		c.ScheduledAt = &t
	}
	return &c
}

// --- Schedules ---

// Schedule is a recurring post template. Each occurrence of Recurrence
// materializes a queued Post with the template's content.
type Schedule struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Name       string            `json:"name"`
	Content    string            `json:"content"`
	Platforms  []Platform        `json:"platforms"`
	MediaURLs  []string          `json:"media_urls,omitempty"`
	Recurrence recurrence.Config `json:"recurrence"`
	Enabled    bool              `json:"enabled"`
	NextRunAt  *time.Time        `json:"next_run_at,omitempty"`
	LastRunAt  *time.Time        `json:"last_run_at,omitempty"`
	RunCount   int               `json:"run_count"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Description is the human readable recurrence summary.
func (s *Schedule) Description() string {
	return recurrence.Describe(s.Recurrence)
}

// Clone returns a deep copy.
func (s *Schedule) Clone() *Schedule {
	c := *s
	c.Platforms = slices.Clone(s.Platforms)
	c.MediaURLs = slices.Clone(s.MediaURLs)
	c.Recurrence.Days = slices.Clone(s.Recurrence.Days)
	if s.Recurrence.EndDate != nil {
		t := *s.Recurrence.EndDate
		c.Recurrence.EndDate = &t
	}
	if s.NextRunAt != nil {
		t := *s.NextRunAt
		c.NextRunAt = &t
	}
	if s.LastRunAt != nil {
		t := *s.LastRunAt
		c.LastRunAt = &t
	}
	return &c
}
