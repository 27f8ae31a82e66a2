package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/core/metrics"
	"trip-stitcher/internal/features/itinerary/domain"
	"trip-stitcher/internal/features/itinerary/ports"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	// ErrItineraryNotFound is returned when no snapshot exists for the id.
	ErrItineraryNotFound = errors.New("itinerary not found")
	// ErrItineraryLocked is returned when another writer holds the itinerary.
	ErrItineraryLocked = errors.New("itinerary is being updated")
	// ErrNoSegments is returned when an edit or import yields no segments.
	ErrNoSegments = errors.New("no segments")
	// ErrImportsDisabled is returned when no extractor is configured.
	ErrImportsDisabled = errors.New("document imports are disabled")
	// ErrExtractionFailed wraps extractor failures.
	ErrExtractionFailed = errors.New("document extraction failed")
)

// ItineraryServiceImpl implements ports.ItineraryService.
type ItineraryServiceImpl struct {
	repo      ports.ItineraryRepository
	locker    ports.Locker
	engine    ports.Repairer
	extractor ports.SegmentExtractor
	exporter  ports.CalendarExporter
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewItineraryService creates a new ItineraryServiceImpl. extractor and m may
// be nil, which disables imports and metrics respectively.
func NewItineraryService(
	repo ports.ItineraryRepository,
	locker ports.Locker,
	engine ports.Repairer,
	extractor ports.SegmentExtractor,
	exporter ports.CalendarExporter,
	m *metrics.Metrics,
) *ItineraryServiceImpl {
	return &ItineraryServiceImpl{
		repo:      repo,
		locker:    locker,
		engine:    engine,
		extractor: extractor,
		exporter:  exporter,
		metrics:   m,
		now:       time.Now,
	}
}

// Get returns the stored itinerary.
func (s *ItineraryServiceImpl) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	itinerary, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get itinerary: %w", err)
	}
	if itinerary == nil {
		return nil, fmt.Errorf("%w: %s", ErrItineraryNotFound, id)
	}
	return itinerary, nil
}

// Delete removes the itinerary.
func (s *ItineraryServiceImpl) Delete(ctx context.Context, id string) error {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer s.release(ctx, id, unlock)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete itinerary: %w", err)
	}
	return nil
}

// ReplaceSegments stores an edited segment list and repairs it. Segments
// without an id get one; segments without provenance count as imported.
func (s *ItineraryServiceImpl) ReplaceSegments(ctx context.Context, id string, segments []domain.Segment) (*domain.RepairResult, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	edited := lo.Map(segments, func(seg domain.Segment, _ int) domain.Segment {
		if seg.Provenance == "" {
			seg.Provenance = domain.ProvenanceImported
		}
		return withID(seg)
	})

	return s.mutate(ctx, id, true, func(*domain.Itinerary) []domain.Segment {
		return edited
	})
}

// Repair re-runs the engine on the stored snapshot.
func (s *ItineraryServiceImpl) Repair(ctx context.Context, id string) (*domain.RepairResult, error) {
	return s.mutate(ctx, id, false, func(current *domain.Itinerary) []domain.Segment {
		return current.Segments
	})
}

// Import extracts segments from doc, merges them into the itinerary and
// repairs the result. Re-imported segments replace the ones with the same id;
// segments the extractor returns without one get an id derived from the
// document, so importing the same document twice does not duplicate them.
// The itinerary is created when it does not exist yet.
func (s *ItineraryServiceImpl) Import(ctx context.Context, id string, doc domain.SourceDocument) (*domain.RepairResult, error) {
	if s.extractor == nil {
		return nil, ErrImportsDisabled
	}

	extracted, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		s.countImport("error")
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if len(extracted) == 0 {
		s.countImport("empty")
		return nil, fmt.Errorf("%w in %s", ErrNoSegments, doc.URL)
	}

	imported := lo.Map(extracted, func(seg domain.Segment, _ int) domain.Segment {
		seg.Provenance = domain.ProvenanceImported
		if seg.ID == "" {
			seg.ID = importedID(doc, seg)
		}
		return seg
	})
	replaced := lo.KeyBy(imported, func(seg domain.Segment) string { return seg.ID })

	result, err := s.mutate(ctx, id, true, func(current *domain.Itinerary) []domain.Segment {
		if current == nil {
			return imported
		}
		kept := lo.Reject(current.Segments, func(seg domain.Segment, _ int) bool {
			_, ok := replaced[seg.ID]
			return ok
		})
		return append(kept, imported...)
	})
	if err != nil {
		s.countImport("error")
		return nil, err
	}
	s.countImport("ok")
	return result, nil
}

// ExportCalendar renders the stored itinerary as an iCalendar document.
func (s *ItineraryServiceImpl) ExportCalendar(ctx context.Context, id string) ([]byte, error) {
	itinerary, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Export(itinerary)
	if err != nil {
		return nil, fmt.Errorf("service: failed to export calendar: %w", err)
	}
	return data, nil
}

// mutate runs one read, repair and write back transaction under the
// itinerary lock. When create is false a missing itinerary is an error.
func (s *ItineraryServiceImpl) mutate(ctx context.Context, id string, create bool, next func(current *domain.Itinerary) []domain.Segment) (*domain.RepairResult, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, id, unlock)

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get itinerary: %w", err)
	}
	if current == nil && !create {
		return nil, fmt.Errorf("%w: %s", ErrItineraryNotFound, id)
	}

	result, err := s.repair(id, next(current))
	if err != nil {
		return nil, err
	}

	itinerary := &domain.Itinerary{
		ID:          id,
		Segments:    result.Segments,
		Diagnostics: result.Diagnostics,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, itinerary); err != nil {
		return nil, fmt.Errorf("service: failed to save itinerary: %w", err)
	}

	return result, nil
}

func (s *ItineraryServiceImpl) repair(id string, segments []domain.Segment) (*domain.RepairResult, error) {
	log := logger.ForItinerary(id)
	start := time.Now()

	result, err := s.engine.Repair(id, segments)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedSegment):
			s.observe(metrics.OutcomeMalformed, elapsed, nil)
			log.Warn("Rejected malformed segments", zap.Error(err))
		case errors.Is(err, domain.ErrIntegrityViolation):
			s.observe(metrics.OutcomeIntegrity, elapsed, nil)
			log.Error("Repair produced an inconsistent itinerary", zap.Error(err))
		default:
			s.observe(metrics.OutcomeError, elapsed, nil)
			log.Error("Repair failed", zap.Error(err))
		}
		return nil, fmt.Errorf("service: failed to repair itinerary: %w", err)
	}

	s.observe(metrics.OutcomeOK, elapsed, result)
	log.Info("Itinerary repaired",
		zap.Int("segments", len(result.Segments)),
		zap.Int("synthesized", result.Stats.Synthesized),
		zap.Int("retracted", result.Stats.Retracted),
		zap.Int("conflicts", result.Stats.Conflicts),
		zap.Int("unresolved", result.Stats.Unresolved),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (s *ItineraryServiceImpl) lock(ctx context.Context, id string) (func(context.Context) error, error) {
	unlock, err := s.locker.Lock(ctx, id)
	if errors.Is(err, ports.ErrLockNotAcquired) {
		return nil, fmt.Errorf("%w: %s", ErrItineraryLocked, id)
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to lock itinerary: %w", err)
	}
	return unlock, nil
}

// release runs on a context that outlives request cancellation so an aborted
// request still frees the itinerary.
func (s *ItineraryServiceImpl) release(ctx context.Context, id string, unlock func(context.Context) error) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		logger.ForItinerary(id).Warn("Failed to release itinerary lock", zap.Error(err))
	}
}

func (s *ItineraryServiceImpl) observe(outcome string, elapsed time.Duration, result *domain.RepairResult) {
	if s.metrics == nil {
		return
	}
	if result == nil {
		s.metrics.ObserveRepair(outcome, elapsed, 0, 0, 0, 0)
		return
	}
	st := result.Stats
	s.metrics.ObserveRepair(outcome, elapsed, st.Synthesized, st.Retracted, st.Conflicts, st.Unresolved)
}

func (s *ItineraryServiceImpl) countImport(result string) {
	if s.metrics != nil {
		s.metrics.ImportsTotal.WithLabelValues(result).Inc()
	}
}

// importedNamespace seeds the ids of extracted segments that carry none.
var importedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trip-stitcher/imported-segment"))

// importedID is stable for the same document, kind, start time and
// confirmation reference.
func importedID(doc domain.SourceDocument, seg domain.Segment) string {
	name := strings.Join([]string{
		doc.URL,
		string(seg.Kind),
		seg.StartTime.UTC().Format(time.RFC3339Nano),
		seg.ConfirmationReference,
	}, "|")
	return uuid.NewSHA1(importedNamespace, []byte(name)).String()
}

func withID(seg domain.Segment) domain.Segment {
	if seg.ID == "" {
		seg.ID = uuid.NewString()
	}
	return seg
}
