// Package scheduler runs the background dispatcher that turns due recurring
// schedules into queued posts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/soochol/postplan/internal/metrics"
	"github.com/soochol/postplan/internal/postplan"
	"github.com/soochol/postplan/internal/recurrence"
	"github.com/soochol/postplan/internal/repository"
)

// Metric names recorded by the dispatcher.
const (
	MetricTickDuration = "dispatcher.tick_ms"
	MetricDue          = "dispatcher.due"
	MetricMaterialized = "dispatcher.posts_materialized"
	MetricCompleted    = "dispatcher.schedules_completed"
	MetricErrors       = "dispatcher.errors"
	MetricNotifyFailed = "dispatcher.notify_failed"
	MetricSwept        = "metrics.swept"
)

// Options configures a Dispatcher. Zero fields take the defaults below.
type Options struct {
	Tick          string // cron spec, default "@every 30s"
	Sweep         string // cron spec, default "@every 5m"
	Timezone      string // applied to both specs
	MaxConcurrent int    // schedules processed in parallel, default 4
	MaxCatchUp    int    // occurrences materialized per schedule per tick, default 10
}

func (o Options) withDefaults() Options {
	if o.Tick == "" {
		o.Tick = "@every 30s"
	}
	if o.Sweep == "" {
		o.Sweep = "@every 5m"
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.MaxCatchUp <= 0 {
		o.MaxCatchUp = 10
	}
	return o
}

// Notifier receives a summary line whenever a schedule queues posts.
// *notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Dispatcher materializes a queued post for every due occurrence of an
// enabled schedule, then advances the schedule to its next occurrence or
// disables it when none remains.
type Dispatcher struct {
	schedules repository.ScheduleRepository
	posts     repository.PostRepository
	metrics   *metrics.Registry
	notifier  Notifier
	opts      Options
	retry     retryPolicy
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entries []cron.EntryID
}

// NewDispatcher creates a Dispatcher. reg may be nil.
func NewDispatcher(
	schedules repository.ScheduleRepository,
	posts repository.PostRepository,
	reg *metrics.Registry,
	opts Options,
) *Dispatcher {
	return &Dispatcher{
		schedules: schedules,
		posts:     posts,
		metrics:   reg,
		opts:      opts.withDefaults(),
		retry:     defaultRetry,
		now:       time.Now,
	}
}

// SetNotifier configures where queued-post summaries are sent. nil disables
// notifications.
func (d *Dispatcher) SetNotifier(n Notifier) {
	d.notifier = n
}

// Start registers the tick and sweep cron entries and starts the cron
// runner. Ticks never overlap. ctx bounds every job run.
func (d *Dispatcher) Start(ctx context.Context) error {
	tick, err := parseSpec(d.opts.Tick, d.opts.Timezone)
	if err != nil {
		return fmt.Errorf("parse tick spec %q: %w", d.opts.Tick, err)
	}
	sweep, err := parseSpec(d.opts.Sweep, d.opts.Timezone)
	if err != nil {
		return fmt.Errorf("parse sweep spec %q: %w", d.opts.Sweep, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return fmt.Errorf("dispatcher already started")
	}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	d.entries = append(d.entries,
		c.Schedule(tick, cron.FuncJob(func() {
			if err := d.Tick(ctx, d.now()); err != nil {
				slog.Warn("dispatcher: tick failed", "err", err)
			}
		})),
		c.Schedule(sweep, cron.FuncJob(func() { d.Sweep(d.now()) })),
	)
	d.cron = c
	c.Start()
	slog.Info("dispatcher: started", "tick", d.opts.Tick, "sweep", d.opts.Sweep, "max_concurrent", d.opts.MaxConcurrent)
	return nil
}

// Stop halts the cron runner and waits for a running tick to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.entries = nil
	d.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	slog.Info("dispatcher: stopped")
}

// Tick processes every schedule due at now. A failure on one schedule is
// logged and counted without stopping the others; only listing failures
// are returned.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer d.observe(MetricTickDuration, start)

	due, err := d.schedules.ListDue(ctx, now)
	if err != nil {
		d.inc(MetricErrors, now)
		return fmt.Errorf("list due schedules: %w", err)
	}
	d.record(MetricDue, float64(len(due)), now)
	if len(due) == 0 {
		return nil
	}
	slog.Debug("dispatcher: tick", "due", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.MaxConcurrent)
	for _, s := range due {
		s := s
		g.Go(func() error {
			if err := d.dispatch(gctx, s, now); err != nil {
				d.inc(MetricErrors, now)
				slog.Error("dispatcher: schedule failed", "schedule", s.ID, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// dispatch materializes the due occurrences of s and persists its new state.
func (d *Dispatcher) dispatch(ctx context.Context, s *postplan.Schedule, now time.Time) error {
	materialized := 0
	var advanceErr error
	for s.Enabled && s.NextRunAt != nil && !s.NextRunAt.After(now) && materialized < d.opts.MaxCatchUp {
		at := *s.NextRunAt
		if err := d.materialize(ctx, s, at, now); err != nil {
			if materialized > 0 {
				break
			}
			return err
		}
		materialized++
		s.RunCount++
		ranAt := now.UTC()
		s.LastRunAt = &ranAt

		next, ok, err := d.advance(s, at)
		if err != nil {
			// The occurrence at is already queued; park the schedule so it
			// is not queued again.
			advanceErr = fmt.Errorf("advance schedule %s: %w", s.ID, err)
			s.Enabled = false
			s.NextRunAt = nil
			break
		}
		if !ok {
			s.Enabled = false
			s.NextRunAt = nil
			d.inc(MetricCompleted, now)
			slog.Info("dispatcher: schedule completed", "schedule", s.ID, "runs", s.RunCount)
			break
		}
		s.NextRunAt = &next
	}

	s.UpdatedAt = now.UTC()
	err := withRetry(ctx, d.retry, "update schedule", func() error {
		return d.schedules.Update(ctx, s)
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", s.ID, err)
	}
	d.notify(ctx, s, materialized, now)
	return advanceErr
}

// notify reports a dispatch that queued at least one post. Delivery failures
// are counted and never fail the dispatch.
func (d *Dispatcher) notify(ctx context.Context, s *postplan.Schedule, queued int, now time.Time) {
	if d.notifier == nil || queued == 0 {
		return
	}
	if err := d.notifier.Notify(ctx, summary(s, queued)); err != nil {
		d.inc(MetricNotifyFailed, now)
		slog.Warn("dispatcher: notify failed", "schedule", s.ID, "err", err)
	}
}

func summary(s *postplan.Schedule, queued int) string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	msg := fmt.Sprintf("postplan: %q queued %d post(s)", name, queued)
	if s.NextRunAt != nil {
		return msg + ", next run " + s.NextRunAt.UTC().Format(time.RFC3339)
	}
	return msg + ", schedule completed"
}

// advance returns the occurrence after at. One-off schedules never have one.
func (d *Dispatcher) advance(s *postplan.Schedule, at time.Time) (time.Time, bool, error) {
	if s.Recurrence.Frequency == recurrence.FrequencyOnce {
		return time.Time{}, false, nil
	}
	return recurrence.NextOccurrence(s.Recurrence, at)
}

func (d *Dispatcher) materialize(ctx context.Context, s *postplan.Schedule, at, now time.Time) error {
	p := &postplan.Post{
		ID:          postplan.GenerateID("post"),
		UserID:      s.UserID,
		Content:     s.Content,
		Platforms:   s.Platforms,
		MediaURLs:   s.MediaURLs,
		ScheduledAt: &at,
		Status:      postplan.PostQueued,
		ScheduleID:  s.ID,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	err := withRetry(ctx, d.retry, "create post", func() error {
		return d.posts.Create(ctx, p)
	})
	if err != nil {
		return fmt.Errorf("materialize %s at %s: %w", s.ID, at.Format(time.RFC3339), err)
	}
	d.inc(MetricMaterialized, now)
	slog.Info("dispatcher: post queued", "schedule", s.ID, "post", p.ID, "at", at)
	return nil
}

// Sweep drops metric samples older than the registry's retention.
func (d *Dispatcher) Sweep(now time.Time) int {
	if d.metrics == nil {
		return 0
	}
	n := d.metrics.SweepExpired(now)
	if n > 0 {
		d.metrics.Record(MetricSwept, float64(n), now)
		slog.Debug("dispatcher: swept metrics", "samples", n)
	}
	return n
}

func (d *Dispatcher) inc(name string, at time.Time) {
	if d.metrics != nil {
		d.metrics.Inc(name, at)
	}
}

func (d *Dispatcher) record(name string, v float64, at time.Time) {
	if d.metrics != nil {
		d.metrics.Record(name, v, at)
	}
}

func (d *Dispatcher) observe(name string, start time.Time) {
	if d.metrics != nil {
		d.metrics.Observe(name, start)
	}
}
