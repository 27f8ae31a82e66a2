package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// Cache defines the caching operations interface following hexagonal architecture.
// This is a port that can be implemented by different cache providers (Redis, in-process, etc.).
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns ErrKeyNotFound (wrapped) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only if key does not exist yet and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// CompareAndDelete removes key only if it still holds value, atomically.
	CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error)

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
