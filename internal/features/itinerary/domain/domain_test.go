package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		name    string
		loc     Location
		zero    bool
		display string
	}{
		{"empty", Location{}, true, ""},
		{"whitespace only", Location{ID: " ", Label: "\t"}, true, ""},
		{"address only", Location{Address: "5th Avenue"}, true, ""},
		{"id only", Location{ID: "JFK"}, false, "JFK"},
		{"label wins", Location{ID: "JFK", Label: "John F. Kennedy International"}, false, "John F. Kennedy International"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.zero, tt.loc.IsZero())
			if !tt.zero {
				assert.Equal(t, tt.display, tt.loc.DisplayName())
			}
		})
	}
}

func TestSegmentKind_Valid(t *testing.T) {
	for _, k := range []SegmentKind{SegmentKindFlight, SegmentKindTransfer, SegmentKindHotel, SegmentKindActivity, SegmentKindOther} {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, SegmentKind("TRAIN").Valid())
	assert.False(t, SegmentKind("").Valid())
}

func TestProvenance_Valid(t *testing.T) {
	assert.True(t, ProvenanceImported.Valid())
	assert.True(t, ProvenanceSynthesized.Valid())
	assert.False(t, Provenance("GUESSED").Valid())
}

func TestSegment(t *testing.T) {
	start := time.Date(2025, 6, 12, 14, 0, 0, 0, time.UTC)
	seg := Segment{StartTime: start, EndTime: start.Add(90 * time.Minute), Provenance: ProvenanceSynthesized}

	assert.Equal(t, 90*time.Minute, seg.Duration())
	assert.True(t, seg.IsSynthesized())
	assert.False(t, seg.IsImported())
}

func TestDiagnostic_ReferencesIndex(t *testing.T) {
	d := Diagnostic{SegmentRefs: []SegmentRef{{ID: "flight", Index: 0}, {ID: "gone", Index: -1}}}

	assert.True(t, d.ReferencesIndex(0))
	assert.True(t, d.ReferencesIndex(-1))
	assert.False(t, d.ReferencesIndex(1))
}

func TestErrors(t *testing.T) {
	malformed := &MalformedSegmentError{Index: 2, SegmentID: "hotel", Field: "end_time", Reason: "is missing"}
	assert.Equal(t, `malformed segment "hotel" at index 2: end_time is missing`, malformed.Error())
	assert.True(t, errors.Is(malformed, ErrMalformedSegment))
	assert.False(t, errors.Is(malformed, ErrIntegrityViolation))

	violation := &IntegrityViolationError{
		Invariant: "continuity",
		Before:    SegmentRef{ID: "flight", Index: 0},
		After:     SegmentRef{ID: "hotel", Index: 1},
		Detail:    "locations differ",
	}
	assert.Equal(t, `continuity violated between "flight" (#0) and "hotel" (#1): locations differ`, violation.Error())
	assert.True(t, errors.Is(violation, ErrIntegrityViolation))
}
