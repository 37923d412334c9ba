package testutil

import (
	"context"
	"sync"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
)

// InMemoryStore is a generic thread-safe in-memory key-value store used
// as the base for repository test doubles.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func (s *InMemoryStore[T]) Get(_ context.Context, key string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		var zero T
		return zero, ierr.NewError("item not found").
			WithReportableDetails(map[string]interface{}{
				"key": key,
			}).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Set(_ context.Context, key string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = item
	return nil
}

// List returns every item matching the filter, in insertion-independent
// map order. Callers sort when order matters.
func (s *InMemoryStore[T]) List(_ context.Context, filterFn func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, item := range s.items {
		if filterFn == nil || filterFn(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s *InMemoryStore[T]) Count(_ context.Context, filterFn func(T) bool) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, item := range s.items {
		if filterFn == nil || filterFn(item) {
			n++
		}
	}
	return n
}
