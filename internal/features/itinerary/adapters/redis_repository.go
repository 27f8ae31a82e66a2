package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trip-stitcher/internal/core/cache"
	"trip-stitcher/internal/features/itinerary/domain"
)

const itineraryKeyPrefix = "itinerary:"

// RedisItineraryRepository implements ports.ItineraryRepository on top of
// the cache port. Each itinerary is one JSON snapshot.
type RedisItineraryRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisItineraryRepository creates a new RedisItineraryRepository. A ttl
// of 0 keeps snapshots until they are deleted.
func NewRedisItineraryRepository(c cache.Cache, ttl time.Duration) *RedisItineraryRepository {
	return &RedisItineraryRepository{
		cache: c,
		ttl:   ttl,
	}
}

// Save stores the itinerary snapshot, replacing any previous one.
func (r *RedisItineraryRepository) Save(ctx context.Context, itinerary *domain.Itinerary) error {
	data, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	if err := r.cache.Set(ctx, itineraryKey(itinerary.ID), data, r.ttl); err != nil {
		return fmt.Errorf("failed to save itinerary to cache: %w", err)
	}
	return nil
}

// Get retrieves the itinerary snapshot, or nil when there is none.
func (r *RedisItineraryRepository) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	data, err := r.cache.Get(ctx, itineraryKey(id))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary from cache: %w", err)
	}

	var itinerary domain.Itinerary
	if err := json.Unmarshal(data, &itinerary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal itinerary: %w", err)
	}
	return &itinerary, nil
}

// Delete removes the itinerary snapshot.
func (r *RedisItineraryRepository) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, itineraryKey(id)); err != nil {
		return fmt.Errorf("failed to delete itinerary from cache: %w", err)
	}
	return nil
}

func itineraryKey(id string) string {
	return itineraryKeyPrefix + id
}
