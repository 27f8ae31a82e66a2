package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryAdapter implements Cache in process. It backs single-instance
// deployments and local development when no Redis URL is configured.
type MemoryAdapter struct {
	store *gocache.Cache
	// mu serialises the conditional writes.
	mu sync.Mutex
}

// NewMemoryAdapter creates an in-process cache that sweeps expired keys every
// cleanupInterval.
func NewMemoryAdapter(cleanupInterval time.Duration) *MemoryAdapter {
	return &MemoryAdapter{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get returns a copy of the stored value.
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return bytes.Clone(v.([]byte)), nil
}

// Set stores a copy of value.
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.store.Set(key, bytes.Clone(value), expiration(ttl))
	return nil
}

// SetNX stores value only if key is absent or expired.
func (m *MemoryAdapter) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Add(key, bytes.Clone(value), expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

// CompareAndDelete removes key when it still holds value.
func (m *MemoryAdapter) CompareAndDelete(_ context.Context, key string, value []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.store.Get(key)
	if !ok || !bytes.Equal(v.([]byte), value) {
		return false, nil
	}
	m.store.Delete(key)
	return true, nil
}

// Delete removes key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Ping always succeeds.
func (m *MemoryAdapter) Ping(context.Context) error {
	return nil
}

// Close drops every key.
func (m *MemoryAdapter) Close() error {
	m.store.Flush()
	return nil
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
