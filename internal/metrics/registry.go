// Package metrics keeps named numeric samples for a bounded retention window.
//
// A Registry is created once at startup and passed to whatever records into
// it. Expired samples are dropped only when SweepExpired is called, which the
// dispatcher does on its own cron entry.
package metrics

import (
	"slices"
	"sync"
	"time"
)

// DefaultRetention applies when NewRegistry is given a non-positive window.
const DefaultRetention = 24 * time.Hour

// Sample is one recorded value.
type Sample struct {
	Value float64   `json:"value"`
	At    time.Time `json:"at"`
}

// Summary aggregates the retained samples of one series.
type Summary struct {
	Name   string    `json:"name"`
	Count  int       `json:"count"`
	Sum    float64   `json:"sum"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Avg    float64   `json:"avg"`
	Last   float64   `json:"last"`
	LastAt time.Time `json:"last_at"`
}

// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	retention time.Duration
	series    map[string][]Sample
}

// NewRegistry creates an empty registry.
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		retention: retention,
		series:    make(map[string][]Sample),
	}
}

// Retention returns the configured window.
func (r *Registry) Retention() time.Duration {
	return r.retention
}

// Record appends a sample to the named series.
func (r *Registry) Record(name string, value float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[name] = append(r.series[name], Sample{Value: value, At: at})
}

// Inc records a value of 1.
func (r *Registry) Inc(name string, at time.Time) {
	r.Record(name, 1, at)
}

// Observe records the elapsed time since start in milliseconds.
func (r *Registry) Observe(name string, start time.Time) {
	now := time.Now()
	r.Record(name, float64(now.Sub(start).Microseconds())/1000, now)
}

// Summary aggregates the named series. ok is false when it has no samples.
func (r *Registry) Summary(name string) (Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	samples := r.series[name]
	if len(samples) == 0 {
		return Summary{}, false
	}
	return summarize(name, samples), true
}

// Snapshot summarizes every non-empty series, ordered by name.
func (r *Registry) Snapshot() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, len(r.series))
	for name, samples := range r.series {
		if len(samples) > 0 {
			out = append(out, summarize(name, samples))
		}
	}
	slices.SortFunc(out, func(a, b Summary) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// SweepExpired drops samples recorded before now minus the retention window
// and removes series left empty. It returns the number of samples dropped.
func (r *Registry) SweepExpired(now time.Time) int {
	cutoff := now.Add(-r.retention)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for name, samples := range r.series {
		kept := samples[:0]
		for _, s := range samples {
			if s.At.Before(cutoff) {
				dropped++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(r.series, name)
			continue
		}
		r.series[name] = kept
	}
	return dropped
}

func summarize(name string, samples []Sample) Summary {
	s := Summary{Name: name, Count: len(samples), Min: samples[0].Value, Max: samples[0].Value}
	for _, smp := range samples {
		s.Sum += smp.Value
		s.Min = min(s.Min, smp.Value)
		s.Max = max(s.Max, smp.Value)
		if !smp.At.Before(s.LastAt) {
			s.Last, s.LastAt = smp.Value, smp.At
		}
	}
	s.Avg = s.Sum / float64(s.Count)
	return s
}
