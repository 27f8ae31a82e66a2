package adapters

import (
	"context"
	"fmt"
	"time"

	"trip-stitcher/internal/core/cache"
	"trip-stitcher/internal/features/itinerary/ports"

	"github.com/google/uuid"
)

const (
	lockKeyPrefix     = "lock:itinerary:"
	lockRetryInterval = 50 * time.Millisecond
)

// CacheLocker implements ports.Locker with a SET NX lease per itinerary.
// Each holder writes a random token so it can only release its own lease.
type CacheLocker struct {
	cache cache.Cache
	ttl   time.Duration
	wait  time.Duration
}

// NewCacheLocker creates a locker. ttl bounds how long a crashed holder
// blocks the itinerary; wait bounds how long Lock retries.
func NewCacheLocker(c cache.Cache, ttl, wait time.Duration) *CacheLocker {
	return &CacheLocker{cache: c, ttl: ttl, wait: wait}
}

// Lock implements ports.Locker.
func (l *CacheLocker) Lock(ctx context.Context, id string) (func(context.Context) error, error) {
	key := lockKeyPrefix + id
	token := []byte(uuid.NewString())
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				if _, err := l.cache.CompareAndDelete(ctx, key, token); err != nil {
					return fmt.Errorf("failed to release lock %s: %w", key, err)
				}
				return nil
			}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ports.ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
