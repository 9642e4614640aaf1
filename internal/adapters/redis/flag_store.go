package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultFlagPrefix = "flags:"

// FlagStore keeps each browser's flags in one hash, keyed by device scope.
// With a non-zero TTL the hash expires after that long without writes.
type FlagStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// FlagStoreOption configures a FlagStore.
type FlagStoreOption func(*FlagStore)

// WithFlagPrefix overrides the "flags:" key prefix.
func WithFlagPrefix(prefix string) FlagStoreOption {
	return func(s *FlagStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithFlagTTL expires idle flag hashes.
func WithFlagTTL(ttl time.Duration) FlagStoreOption {
	return func(s *FlagStore) { s.ttl = ttl }
}

// NewFlagStore creates a Redis-backed flag store.
func NewFlagStore(client redis.UniversalClient, opts ...FlagStoreOption) *FlagStore {
	s := &FlagStore{client: client, prefix: defaultFlagPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errEmptyScope = errors.New("flag scope cannot be empty")

func (s *FlagStore) key(scope string) string { return s.prefix + scope }

// Has reports whether key is set for scope.
func (s *FlagStore) Has(ctx context.Context, scope, key string) (bool, error) {
	if scope == "" {
		return false, errEmptyScope
	}
	ok, err := s.client.HExists(ctx, s.key(scope), key).Result()
	if err != nil {
		return false, fmt.Errorf("redis hexists: %w", err)
	}
	return ok, nil
}

// Set marks key present for scope.
func (s *FlagStore) Set(ctx context.Context, scope, key string) error {
	if scope == "" {
		return errEmptyScope
	}
	hashKey := s.key(scope)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, hashKey, key, time.Now().UTC().Format(time.RFC3339))
		if s.ttl > 0 {
			p.Expire(ctx, hashKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Clear removes key for scope. Clearing an absent key is not an error.
func (s *FlagStore) Clear(ctx context.Context, scope, key string) error {
	if scope == "" {
		return errEmptyScope
	}
	if err := s.client.HDel(ctx, s.key(scope), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
