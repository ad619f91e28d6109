package memory

import (
	"context"
	"slices"
	"sync"
)

// Store implements ports.PhraseStore in memory.
// Safe for concurrent use.
type Store struct {
	lists  map[string][]string
	values map[string]string
	cap    int
	mu     sync.RWMutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCap trims each list to its newest n elements after every append.
func WithCap(n int) StoreOption {
	return func(s *Store) {
		s.cap = n
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		lists:  make(map[string][]string),
		values: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Range returns list elements with LRANGE index semantics.
func (s *Store) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	n := int64(len(list))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return []string{}, nil
	}

	// Copy on read so callers can't mutate the store through the slice.
	return slices.Clone(list[start : stop+1]), nil
}

// Get returns the plain value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Append pushes tokens to the tail of the list stored under key.
func (s *Store) Append(ctx context.Context, key string, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.lists[key], tokens...)
	if s.cap > 0 && len(list) > s.cap {
		list = slices.Clone(list[len(list)-s.cap:])
	}
	s.lists[key] = list
	return nil
}

// SetValue stores a plain string value, the legacy encoding read by the
// phrase adapter when a list is empty.
func (s *Store) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
