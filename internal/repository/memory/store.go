// Package memory provides a generic thread-safe in-memory key-value store
// used by repository adapters.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned by Store when the requested key does not exist.
var ErrNotFound = errors.New("not found")

// Store is a generic thread-safe in-memory key-value store. Values pass
// through clone on the way in and out so callers never share state with
// the store.
type Store[V any] struct {
	mu      sync.RWMutex
	data    map[string]V
	keyFunc func(V) string
	clone   func(V) V
}

// New creates a Store with a key extractor and a copy function. A nil clone
// stores values as given.
func New[V any](keyFunc func(V) string, clone func(V) V) *Store[V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	return &Store[V]{
		data:    make(map[string]V),
		keyFunc: keyFunc,
		clone:   clone,
	}
}

// Set inserts or replaces the value, using keyFunc to derive the key.
func (s *Store[V]) Set(_ context.Context, v V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.keyFunc(v)] = s.clone(v)
	return nil
}

// Replace overwrites an existing value. Returns ErrNotFound if absent.
func (s *Store[V]) Replace(_ context.Context, v V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.keyFunc(v)
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	s.data[key] = s.clone(v)
	return nil
}

// Get returns the value for key, or ErrNotFound if absent.
func (s *Store[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return s.clone(v), nil
}

// Delete removes the value for key.  Returns ErrNotFound if absent.
func (s *Store[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Filter returns the values for which pred returns true, ordered by cmp.
// A nil pred matches everything; a nil cmp leaves map order.
func (s *Store[V]) Filter(_ context.Context, pred func(V) bool, cmp func(a, b V) int) []V {
	s.mu.RLock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		if pred == nil || pred(v) {
			out = append(out, s.clone(v))
		}
	}
	s.mu.RUnlock()
	if cmp != nil {
		slices.SortFunc(out, cmp)
	}
	return out
}

// Len returns the number of stored values.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
