package continuity

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"trip-stitcher/internal/features/itinerary/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpusPlaces = []domain.Location{
	coded("ATH", "Athens Airport (ATH)"),
	place("Athens Airport"),
	place("King George Hotel"),
	place("Acropolis Museum"),
	place("Piraeus Port"),
	coded("JFK", "JFK Terminal 4"),
	place("Midtown Hotel"),
}

var corpusKinds = []domain.SegmentKind{
	domain.SegmentKindFlight,
	domain.SegmentKindTransfer,
	domain.SegmentKindHotel,
	domain.SegmentKindActivity,
	domain.SegmentKindOther,
}

// generateTrip builds a random imported itinerary. Windows may overlap,
// touch or leave gaps, and roughly half of the legs start where the previous
// one ended.
func generateTrip(r *rand.Rand, n int) []domain.Segment {
	offsets := []time.Duration{0, 0, 30 * time.Minute, 2 * time.Hour, -time.Hour}
	cursor := day.Add(6 * time.Hour)
	last := corpusPlaces[r.Intn(len(corpusPlaces))]

	segments := make([]domain.Segment, 0, n)
	for i := 0; i < n; i++ {
		kind := corpusKinds[r.Intn(len(corpusKinds))]
		from := corpusPlaces[r.Intn(len(corpusPlaces))]
		if r.Intn(2) == 0 {
			from = last
		}
		to := from
		if kind == domain.SegmentKindFlight || kind == domain.SegmentKindTransfer || (kind == domain.SegmentKindOther && r.Intn(2) == 0) {
			to = corpusPlaces[r.Intn(len(corpusPlaces))]
		}

		start := cursor.Add(offsets[r.Intn(len(offsets))])
		end := start.Add(time.Duration(30+r.Intn(300)) * time.Minute)

		s := seg(fmt.Sprintf("s%d", i), kind, from, to, start, end)
		s.Confidence = 0.5 + r.Float64()/2
		segments = append(segments, s)

		cursor = end
		last = to
	}

	// Extraction order is not chronological.
	r.Shuffle(len(segments), func(i, j int) { segments[i], segments[j] = segments[j], segments[i] })
	return segments
}

func TestEngine_Repair_Properties(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := rand.New(rand.NewSource(20250612))

	for i := 0; i < 500; i++ {
		input := generateTrip(r, 1+r.Intn(8))

		t.Run(fmt.Sprintf("trip-%03d", i), func(t *testing.T) {
			result, err := e.Repair("generated", input)
			require.NoError(t, err)

			ordered := sortChronologically(input)
			out := result.Segments

			for j := 1; j < len(out); j++ {
				assert.False(t, out[j].StartTime.Before(out[j-1].StartTime), "chronological order at %d", j)
			}

			var imported []domain.Segment
			for _, s := range out {
				if s.IsImported() {
					imported = append(imported, s)
				}
			}
			assert.Equal(t, ordered, imported, "imported segments are kept as they were")

			for j, s := range out {
				if !s.IsSynthesized() {
					continue
				}
				require.True(t, j > 0 && j < len(out)-1, "synthesized transfer at the edge")
				assert.False(t, e.classifier.isGroundConnector(out[j-1]), "connector before synthesized transfer %d", j)
				assert.False(t, e.classifier.isGroundConnector(out[j+1]), "connector after synthesized transfer %d", j)
			}

			assert.Equal(t, expectedSyntheses(e, ordered), countProvenance(out, domain.ProvenanceSynthesized))

			again, err := e.Repair("generated", out)
			require.NoError(t, err)
			assert.Equal(t, out, again.Segments)
			assert.Empty(t, diagnosticsOfKind(again.Diagnostics, domain.DiagnosticTransferSynthesized))
			assert.Empty(t, diagnosticsOfKind(again.Diagnostics, domain.DiagnosticSynthesisRetracted))
			assert.Equal(t, len(result.Diagnostics)-result.Stats.Synthesized, len(again.Diagnostics))
		})
	}
}

// expectedSyntheses counts the adjacent pairs whose places differ, whose
// windows leave room for a transfer and that no neighbouring connector
// already serves.
func expectedSyntheses(e *Engine, ordered []domain.Segment) int {
	n := 0
	for i := 1; i < len(ordered); i++ {
		prev, next := ordered[i-1], ordered[i]
		switch {
		case e.matcher.Equivalent(prev.EndLocation, next.StartLocation):
		case next.StartTime.Before(prev.EndTime):
		case e.classifier.isGroundConnector(prev), e.classifier.isGroundConnector(next):
		case prev.EndTime.Equal(next.StartTime) && (ExactMatcher{}).Equivalent(prev.EndLocation, next.StartLocation):
		default:
			n++
		}
	}
	return n
}

func TestEngine_Repair_RoundTripOfContinuousTrip(t *testing.T) {
	e := NewEngine(DefaultConfig())
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 100; i++ {
		n := 2 + r.Intn(6)
		cursor := day
		where := corpusPlaces[r.Intn(len(corpusPlaces))]
		input := make([]domain.Segment, 0, n)
		for j := 0; j < n; j++ {
			end := cursor.Add(time.Duration(1+r.Intn(4)) * time.Hour)
			if j%2 == 0 {
				input = append(input, stay(fmt.Sprintf("stay%d", j), domain.SegmentKindActivity, where, cursor, end))
			} else {
				to := corpusPlaces[r.Intn(len(corpusPlaces))]
				input = append(input, seg(fmt.Sprintf("leg%d", j), domain.SegmentKindFlight, where, to, cursor, end))
				where = to
			}
			cursor = end
		}

		result, err := e.Repair("continuous", input)

		require.NoError(t, err)
		assert.Equal(t, input, result.Segments)
		assert.Empty(t, result.Diagnostics)
	}
}
