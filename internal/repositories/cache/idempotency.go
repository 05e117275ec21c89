package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker is stored while the request holding a key is in flight.
const pendingMarker = "pending"

const idempotencyPrefix = "idem:order:"

// IdempotencyStore records which order an idempotency key produced.
type IdempotencyStore struct {
	client redis.Cmdable

	hits   int64
	misses int64
}

func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Key scopes a client-supplied key to the buyer that sent it.
func Key(buyerID uint, key string) string {
	return fmt.Sprintf("%s%d:%s", idempotencyPrefix, buyerID, key)
}

// Reserve claims key for ttl. It returns false if the key is already held,
// whether pending or completed.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Complete stores the order reference produced for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key, reference string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, reference, ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Lookup returns the order reference for key. pending is true while the
// original request is still running.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (reference string, pending bool, err error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&s.misses, 1)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	atomic.AddInt64(&s.hits, 1)
	if val == pendingMarker {
		return "", true, nil
	}
	return val, false, nil
}

// Release drops a reservation after a failed request so it can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Stats reports lookup hits and misses since start.
func (s *IdempotencyStore) Stats() map[string]int64 {
	return map[string]int64{
		"hits":   atomic.LoadInt64(&s.hits),
		"misses": atomic.LoadInt64(&s.misses),
	}
}
