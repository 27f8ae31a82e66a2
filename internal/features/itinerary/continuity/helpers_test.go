package continuity

import (
	"time"

	"trip-stitcher/internal/features/itinerary/domain"
)

var day = time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func place(label string) domain.Location {
	return domain.Location{Label: label}
}

func coded(id, label string) domain.Location {
	return domain.Location{ID: id, Label: label}
}

func seg(id string, kind domain.SegmentKind, from, to domain.Location, start, end time.Time) domain.Segment {
	return domain.Segment{
		ID:            id,
		Kind:          kind,
		StartLocation: from,
		EndLocation:   to,
		StartTime:     start,
		EndTime:       end,
		Provenance:    domain.ProvenanceImported,
		Confidence:    0.9,
	}
}

func stay(id string, kind domain.SegmentKind, where domain.Location, start, end time.Time) domain.Segment {
	return seg(id, kind, where, where, start, end)
}

// greeceTrip is a flight, the booked airport transfer and the hotel it drops
// the traveller at. The airport is named differently on each document.
func greeceTrip() []domain.Segment {
	return []domain.Segment{
		seg("flight", domain.SegmentKindFlight, coded("UNK", ""), coded("ATH", "Athens Airport (ATH)"), at(16, 0), at(20, 0)),
		seg("transfer", domain.SegmentKindTransfer, place("Athens Airport"), place("King George Hotel"), at(20, 0), at(21, 0)),
		stay("hotel", domain.SegmentKindHotel, place("King George Hotel"), at(21, 0), at(21+3*24, 0)),
	}
}

func countProvenance(segments []domain.Segment, p domain.Provenance) int {
	n := 0
	for _, s := range segments {
		if s.Provenance == p {
			n++
		}
	}
	return n
}

func diagnosticsOfKind(diagnostics []domain.Diagnostic, kind domain.DiagnosticKind) []domain.Diagnostic {
	var out []domain.Diagnostic
	for _, d := range diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// idOnlyMatcher only trusts identifiers.
type idOnlyMatcher struct{}

func (idOnlyMatcher) Equivalent(a, b domain.Location) bool {
	return a.ID != "" && a.ID == b.ID
}
