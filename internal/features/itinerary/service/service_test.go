package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"trip-stitcher/internal/core/metrics"
	"trip-stitcher/internal/features/itinerary/continuity"
	"trip-stitcher/internal/features/itinerary/domain"
	"trip-stitcher/internal/features/itinerary/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockItineraryRepository is a mock implementation of ports.ItineraryRepository
type MockItineraryRepository struct {
	mock.Mock
}

func (m *MockItineraryRepository) Get(ctx context.Context, id string) (*domain.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) Save(ctx context.Context, itinerary *domain.Itinerary) error {
	args := m.Called(ctx, itinerary)
	return args.Error(0)
}

func (m *MockItineraryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLocker is a mock implementation of ports.Locker
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Lock(ctx context.Context, id string) (func(context.Context) error, error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}

// MockExtractor is a mock implementation of ports.SegmentExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, doc domain.SourceDocument) ([]domain.Segment, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Segment), args.Error(1)
}

// MockExporter is a mock implementation of ports.CalendarExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(itinerary *domain.Itinerary) ([]byte, error) {
	args := m.Called(itinerary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockRepairer is a mock implementation of ports.Repairer
type MockRepairer struct {
	mock.Mock
}

func (m *MockRepairer) Repair(id string, segments []domain.Segment) (*domain.RepairResult, error) {
	args := m.Called(id, segments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairResult), args.Error(1)
}

var departure = time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)

func flightToJFK() domain.Segment {
	return domain.Segment{
		ID:            "flight",
		Kind:          domain.SegmentKindFlight,
		StartLocation: domain.Location{ID: "ATH"},
		EndLocation:   domain.Location{ID: "JFK", Label: "John F. Kennedy International"},
		StartTime:     departure,
		EndTime:       departure.Add(6 * time.Hour),
		Provenance:    domain.ProvenanceImported,
		Confidence:    0.95,
	}
}

func midtownHotel() domain.Segment {
	hotel := domain.Location{Label: "Midtown Hotel"}
	return domain.Segment{
		ID:            "hotel",
		Kind:          domain.SegmentKindHotel,
		StartLocation: hotel,
		EndLocation:   hotel,
		StartTime:     departure.Add(8 * time.Hour),
		EndTime:       departure.Add(32 * time.Hour),
		Provenance:    domain.ProvenanceImported,
		Confidence:    0.9,
	}
}

type fixture struct {
	repo      *MockItineraryRepository
	locker    *MockLocker
	extractor *MockExtractor
	exporter  *MockExporter
	metrics   *metrics.Metrics
	svc       *ItineraryServiceImpl
}

func newFixture(engine ports.Repairer) *fixture {
	f := &fixture{
		repo:      new(MockItineraryRepository),
		locker:    new(MockLocker),
		extractor: new(MockExtractor),
		exporter:  new(MockExporter),
		metrics:   metrics.NewMetrics("test"),
	}
	if engine == nil {
		engine = continuity.NewEngine(continuity.DefaultConfig())
	}
	f.svc = NewItineraryService(f.repo, f.locker, engine, f.extractor, f.exporter, f.metrics)
	f.svc.now = func() time.Time { return departure }
	return f
}

func TestItineraryService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		f := newFixture(nil)
		stored := &domain.Itinerary{ID: "trip"}
		f.repo.On("Get", ctx, "trip").Return(stored, nil).Once()

		got, err := f.svc.Get(ctx, "trip")

		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()

		_, err := f.svc.Get(ctx, "trip")

		assert.ErrorIs(t, err, ErrItineraryNotFound)
	})

	t.Run("RepoError", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("Get", ctx, "trip").Return(nil, errors.New("redis down")).Once()

		_, err := f.svc.Get(ctx, "trip")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrItineraryNotFound)
	})
}

func TestItineraryService_ReplaceSegments(t *testing.T) {
	ctx := context.Background()

	t.Run("RepairsAndSaves", func(t *testing.T) {
		f := newFixture(nil)
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()
		f.repo.On("Save", ctx, mock.MatchedBy(func(it *domain.Itinerary) bool {
			return it.ID == "trip" && len(it.Segments) == 3 && len(it.Diagnostics) == 1 && it.UpdatedAt.Equal(departure)
		})).Return(nil).Once()

		result, err := f.svc.ReplaceSegments(ctx, "trip", []domain.Segment{midtownHotel(), flightToJFK()})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Stats.Synthesized)
		assert.Equal(t, domain.ProvenanceSynthesized, result.Segments[1].Provenance)
		assert.Equal(t, 1, f.locker.released)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransfersSynthesized))
		f.repo.AssertExpectations(t)
	})

	t.Run("FillsIDAndProvenance", func(t *testing.T) {
		f := newFixture(nil)
		hotel := midtownHotel()
		hotel.ID = ""
		hotel.Provenance = ""
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()
		f.repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		result, err := f.svc.ReplaceSegments(ctx, "trip", []domain.Segment{hotel})

		require.NoError(t, err)
		require.Len(t, result.Segments, 1)
		assert.NotEmpty(t, result.Segments[0].ID)
		assert.Equal(t, domain.ProvenanceImported, result.Segments[0].Provenance)
	})

	t.Run("Empty", func(t *testing.T) {
		f := newFixture(nil)

		_, err := f.svc.ReplaceSegments(ctx, "trip", nil)

		assert.ErrorIs(t, err, ErrNoSegments)
		f.locker.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
	})

	t.Run("Malformed", func(t *testing.T) {
		f := newFixture(nil)
		bad := midtownHotel()
		bad.EndTime = bad.StartTime.Add(-time.Hour)
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()

		_, err := f.svc.ReplaceSegments(ctx, "trip", []domain.Segment{bad})

		assert.ErrorIs(t, err, domain.ErrMalformedSegment)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 1, f.locker.released)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RepairsTotal.WithLabelValues(metrics.OutcomeMalformed)))
	})

	t.Run("Locked", func(t *testing.T) {
		f := newFixture(nil)
		f.locker.On("Lock", ctx, "trip").Return(ports.ErrLockNotAcquired).Once()

		_, err := f.svc.ReplaceSegments(ctx, "trip", []domain.Segment{midtownHotel()})

		assert.ErrorIs(t, err, ErrItineraryLocked)
		f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestItineraryService_Repair(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(nil)
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()

		_, err := f.svc.Repair(ctx, "trip")

		assert.ErrorIs(t, err, ErrItineraryNotFound)
		assert.Equal(t, 1, f.locker.released)
	})

	t.Run("StoredSnapshot", func(t *testing.T) {
		f := newFixture(nil)
		stored := &domain.Itinerary{ID: "trip", Segments: []domain.Segment{flightToJFK(), midtownHotel()}}
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(stored, nil).Once()
		f.repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		result, err := f.svc.Repair(ctx, "trip")

		require.NoError(t, err)
		assert.Len(t, result.Segments, 3)
	})

	t.Run("IntegrityViolation", func(t *testing.T) {
		repairer := new(MockRepairer)
		f := newFixture(repairer)
		stored := &domain.Itinerary{ID: "trip", Segments: []domain.Segment{midtownHotel()}}
		violation := &domain.IntegrityViolationError{Invariant: "continuity", Detail: "broken"}
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(stored, nil).Once()
		repairer.On("Repair", "trip", stored.Segments).Return(nil, violation).Once()

		_, err := f.svc.Repair(ctx, "trip")

		assert.ErrorIs(t, err, domain.ErrIntegrityViolation)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RepairsTotal.WithLabelValues(metrics.OutcomeIntegrity)))
	})
}

func TestItineraryService_Import(t *testing.T) {
	ctx := context.Background()
	doc := domain.SourceDocument{URL: "https://docs.example/hotel.pdf", Type: domain.DocumentTypePDF}

	t.Run("MergesAndReplaces", func(t *testing.T) {
		f := newFixture(nil)
		outdated := midtownHotel()
		outdated.StartTime = outdated.StartTime.Add(time.Hour)
		stored := &domain.Itinerary{ID: "trip", Segments: []domain.Segment{flightToJFK(), outdated}}

		reimported := midtownHotel()
		reimported.Provenance = domain.ProvenanceSynthesized
		f.extractor.On("Extract", ctx, doc).Return([]domain.Segment{reimported}, nil).Once()
		f.locker.On("Lock", ctx, "trip").Return(nil).Once()
		f.repo.On("Get", ctx, "trip").Return(stored, nil).Once()
		f.repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		result, err := f.svc.Import(ctx, "trip", doc)

		require.NoError(t, err)
		require.Len(t, result.Segments, 3)
		assert.Equal(t, midtownHotel(), result.Segments[2])
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImportsTotal.WithLabelValues("ok")))
	})

	t.Run("CreatesItinerary", func(t *testing.T) {
		f := newFixture(nil)
		f.extractor.On("Extract", ctx, doc).Return([]domain.Segment{midtownHotel()}, nil).Once()
		f.locker.On("Lock", ctx, "new").Return(nil).Once()
		f.repo.On("Get", ctx, "new").Return(nil, nil).Once()
		f.repo.On("Save", ctx, mock.Anything).Return(nil).Once()

		result, err := f.svc.Import(ctx, "new", doc)

		require.NoError(t, err)
		assert.Len(t, result.Segments, 1)
	})

	t.Run("ReimportKeepsSegmentsWithoutID", func(t *testing.T) {
		f := newFixture(nil)
		hotel := midtownHotel()
		hotel.ID = ""
		hotel.ConfirmationReference = "MH-4471"

		var saved *domain.Itinerary
		f.extractor.On("Extract", ctx, doc).Return([]domain.Segment{flightToJFK(), hotel}, nil).Twice()
		f.locker.On("Lock", ctx, "trip").Return(nil).Twice()
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()
		f.repo.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.Itinerary)
		}).Return(nil).Twice()

		first, err := f.svc.Import(ctx, "trip", doc)
		require.NoError(t, err)
		f.repo.On("Get", ctx, "trip").Return(saved, nil).Once()

		second, err := f.svc.Import(ctx, "trip", doc)

		require.NoError(t, err)
		assert.Equal(t, first.Segments, second.Segments)
		hotels := lo.Filter(second.Segments, func(seg domain.Segment, _ int) bool {
			return seg.Kind == domain.SegmentKindHotel
		})
		require.Len(t, hotels, 1)
		assert.Equal(t, importedID(doc, hotel), hotels[0].ID)
	})

	t.Run("ImportedIDDependsOnDocument", func(t *testing.T) {
		hotel := midtownHotel()
		other := domain.SourceDocument{URL: "https://docs.example/other.pdf", Type: domain.DocumentTypePDF}
		moved := hotel
		moved.StartTime = moved.StartTime.Add(time.Hour)

		assert.Equal(t, importedID(doc, hotel), importedID(doc, hotel))
		assert.NotEqual(t, importedID(doc, hotel), importedID(other, hotel))
		assert.NotEqual(t, importedID(doc, hotel), importedID(doc, moved))
	})

	t.Run("NothingExtracted", func(t *testing.T) {
		f := newFixture(nil)
		f.extractor.On("Extract", ctx, doc).Return([]domain.Segment{}, nil).Once()

		_, err := f.svc.Import(ctx, "trip", doc)

		assert.ErrorIs(t, err, ErrNoSegments)
		f.locker.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
	})

	t.Run("ExtractorError", func(t *testing.T) {
		f := newFixture(nil)
		f.extractor.On("Extract", ctx, doc).Return(nil, errors.New("timeout")).Once()

		_, err := f.svc.Import(ctx, "trip", doc)

		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImportsTotal.WithLabelValues("error")))
	})

	t.Run("Disabled", func(t *testing.T) {
		svc := NewItineraryService(new(MockItineraryRepository), new(MockLocker), continuity.NewEngine(continuity.DefaultConfig()), nil, new(MockExporter), nil)

		_, err := svc.Import(ctx, "trip", doc)

		assert.ErrorIs(t, err, ErrImportsDisabled)
	})
}

func TestItineraryService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	f.locker.On("Lock", ctx, "trip").Return(nil).Once()
	f.repo.On("Delete", ctx, "trip").Return(nil).Once()

	err := f.svc.Delete(ctx, "trip")

	require.NoError(t, err)
	assert.Equal(t, 1, f.locker.released)
	f.repo.AssertExpectations(t)
}

func TestItineraryService_ExportCalendar(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(nil)
		stored := &domain.Itinerary{ID: "trip"}
		f.repo.On("Get", ctx, "trip").Return(stored, nil).Once()
		f.exporter.On("Export", stored).Return([]byte("BEGIN:VCALENDAR"), nil).Once()

		data, err := f.svc.ExportCalendar(ctx, "trip")

		require.NoError(t, err)
		assert.Equal(t, []byte("BEGIN:VCALENDAR"), data)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(nil)
		f.repo.On("Get", ctx, "trip").Return(nil, nil).Once()

		_, err := f.svc.ExportCalendar(ctx, "trip")

		assert.ErrorIs(t, err, ErrItineraryNotFound)
		f.exporter.AssertNotCalled(t, "Export", mock.Anything)
	})
}
