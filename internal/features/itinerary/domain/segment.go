package domain

import "time"

// SegmentKind is the declared type of a segment as extracted from a document.
type SegmentKind string

const (
	SegmentKindFlight   SegmentKind = "FLIGHT"
	SegmentKindTransfer SegmentKind = "TRANSFER"
	SegmentKindHotel    SegmentKind = "HOTEL"
	SegmentKindActivity SegmentKind = "ACTIVITY"
	SegmentKindOther    SegmentKind = "OTHER"
)

// Valid reports whether k is one of the known kinds.
func (k SegmentKind) Valid() bool {
	switch k {
	case SegmentKindFlight, SegmentKindTransfer, SegmentKindHotel, SegmentKindActivity, SegmentKindOther:
		return true
	}
	return false
}

// Provenance tells extracted segments apart from engine-inserted ones.
type Provenance string

const (
	// ProvenanceImported marks segments extracted from a source document.
	ProvenanceImported Provenance = "IMPORTED"
	// ProvenanceSynthesized marks segments inserted to bridge a gap.
	ProvenanceSynthesized Provenance = "SYNTHESIZED"
)

// Valid reports whether p is a known provenance.
func (p Provenance) Valid() bool {
	return p == ProvenanceImported || p == ProvenanceSynthesized
}

// Segment is one leg of a trip. Segments are treated as values and never
// mutated once handed to the engine.
type Segment struct {
	// ID is the opaque identifier assigned by the importer.
	ID string `json:"id" yaml:"id"`
	// Kind is the declared segment type.
	Kind SegmentKind `json:"kind" yaml:"kind"`
	// StartLocation is where the segment begins. Equal to EndLocation for stays.
	StartLocation Location `json:"start_location" yaml:"start_location"`
	// EndLocation is where the segment ends.
	EndLocation Location `json:"end_location" yaml:"end_location"`
	// StartTime is the departure, check-in or start time.
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	// EndTime is the arrival, check-out or end time.
	EndTime time.Time `json:"end_time" yaml:"end_time"`
	// Provenance records whether the segment was imported or synthesized.
	Provenance Provenance `json:"provenance" yaml:"provenance"`
	// Confidence is the extraction certainty or synthesis heuristic weight.
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// ConfirmationReference is carried through from the source document.
	ConfirmationReference string `json:"confirmation_reference,omitempty" yaml:"confirmation_reference,omitempty"`
}

// IsImported reports whether the segment came from a source document.
func (s Segment) IsImported() bool {
	return s.Provenance == ProvenanceImported
}

// IsSynthesized reports whether the engine inserted the segment.
func (s Segment) IsSynthesized() bool {
	return s.Provenance == ProvenanceSynthesized
}

// Duration returns the length of the segment's time window.
func (s Segment) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
