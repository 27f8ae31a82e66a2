package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndDelete deletes KEYS[1] only when it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisAdapter implements the Cache interface using Redis.
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter creates a new Redis cache adapter.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	return &RedisAdapter{client: client}, nil
}

// Get retrieves a value from Redis by key.
func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value in Redis with the specified TTL.
func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// SetNX stores a value only if the key is free.
func (r *RedisAdapter) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx key %s: %w", key, err)
	}
	return ok, nil
}

// CompareAndDelete removes the key when it still holds value.
func (r *RedisAdapter) CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error) {
	n, err := compareAndDelete.Run(ctx, r.client, []string{key}, value).Int()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-delete key %s: %w", key, err)
	}
	return n == 1, nil
}

// Delete removes a value from Redis by key.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
