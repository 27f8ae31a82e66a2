package ports

import (
	"context"
	"errors"

	"trip-stitcher/internal/features/itinerary/domain"
)

// ErrLockNotAcquired is returned by a Locker when the itinerary stays busy
// for longer than the caller is willing to wait.
var ErrLockNotAcquired = errors.New("lock not acquired")

// ItineraryService defines the primary port for itinerary operations.
type ItineraryService interface {
	Get(ctx context.Context, id string) (*domain.Itinerary, error)
	Delete(ctx context.Context, id string) error
	ReplaceSegments(ctx context.Context, id string, segments []domain.Segment) (*domain.RepairResult, error)
	Repair(ctx context.Context, id string) (*domain.RepairResult, error)
	Import(ctx context.Context, id string, doc domain.SourceDocument) (*domain.RepairResult, error)
	ExportCalendar(ctx context.Context, id string) ([]byte, error)
}

// ItineraryRepository defines the secondary port for snapshot storage.
// Get returns nil, nil when the itinerary does not exist.
type ItineraryRepository interface {
	Get(ctx context.Context, id string) (*domain.Itinerary, error)
	Save(ctx context.Context, itinerary *domain.Itinerary) error
	Delete(ctx context.Context, id string) error
}

// Locker serializes the read, repair and write back of one itinerary.
type Locker interface {
	// Lock blocks until the itinerary is free, ctx is done or the locker gives
	// up. The returned function releases the lock.
	Lock(ctx context.Context, id string) (unlock func(context.Context) error, err error)
}

// Repairer runs the continuity engine over a snapshot.
type Repairer interface {
	Repair(itineraryID string, segments []domain.Segment) (*domain.RepairResult, error)
}

// SegmentExtractor turns a source document into imported segments.
type SegmentExtractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) ([]domain.Segment, error)
}

// CalendarExporter renders an itinerary for calendar applications.
type CalendarExporter interface {
	Export(itinerary *domain.Itinerary) ([]byte, error)
}
