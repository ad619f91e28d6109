package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.PhraseStore using Redis lists.
type Store struct {
	client *backend.Client
	cap    int64
	ttl    time.Duration
}

type Option func(*Store)

// WithCap trims every phrase list to its newest n tokens after an append.
func WithCap(n int64) Option {
	return func(s *Store) {
		s.cap = n
	}
}

// WithTTL sets the expiration refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		cap:    0, // No trimming by default
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Range reads list elements with LRANGE.
func (s *Store) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list from redis: %w", err)
	}
	return vals, nil
}

// Get reads a plain string value.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, true, nil
}

// Append pushes tokens to the tail of the list, trimming and refreshing the TTL in one pipeline.
func (s *Store) Append(ctx context.Context, key string, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}

	values := make([]any, len(tokens))
	for i, t := range tokens {
		values[i] = t
	}

	pipe := s.client.Pipeline()

	pipe.RPush(ctx, key, values...)
	if s.cap > 0 {
		pipe.LTrim(ctx, key, -s.cap, -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Ping checks connectivity, used by health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
