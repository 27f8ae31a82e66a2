package continuity

import "trip-stitcher/internal/features/itinerary/domain"

// Role is the connective role of a segment, independent of its declared kind.
type Role string

const (
	// RoleConnective marks segments that move the traveller between places.
	RoleConnective Role = "CONNECTIVE"
	// RoleStay marks segments that start and end at the same place.
	RoleStay Role = "STAY"
)

// rolePredicate reports whether a segment acts as a connector. Predicates are
// evaluated in order and the first hit wins, so new kinds need no changes to
// the detector.
type rolePredicate struct {
	name       string
	connective func(seg domain.Segment, matcher LocationMatcher) bool
}

var connectivePredicates = []rolePredicate{
	{
		name: "transport-kind",
		connective: func(seg domain.Segment, _ LocationMatcher) bool {
			return seg.Kind == domain.SegmentKindFlight || seg.Kind == domain.SegmentKindTransfer
		},
	},
	{
		// Catches mis-tagged imports such as a train ticket labelled OTHER.
		name: "moves-traveller",
		connective: func(seg domain.Segment, matcher LocationMatcher) bool {
			return !matcher.Equivalent(seg.StartLocation, seg.EndLocation)
		},
	},
}

// Classifier labels segments by connective role.
type Classifier struct {
	matcher LocationMatcher
}

// NewClassifier creates a Classifier that compares locations with matcher.
func NewClassifier(matcher LocationMatcher) *Classifier {
	return &Classifier{matcher: matcher}
}

// Classify returns the role of seg, or a MalformedSegmentError when required
// fields are missing.
func (c *Classifier) Classify(seg domain.Segment) (Role, error) {
	if err := ValidateSegment(-1, seg); err != nil {
		return "", err
	}
	return c.role(seg), nil
}

func (c *Classifier) role(seg domain.Segment) Role {
	for _, p := range connectivePredicates {
		if p.connective(seg, c.matcher) {
			return RoleConnective
		}
	}
	return RoleStay
}

// isGroundConnector reports whether seg is a connector that is not a flight.
// Flights are transport endpoints and may sit next to a transfer.
func (c *Classifier) isGroundConnector(seg domain.Segment) bool {
	return seg.Kind != domain.SegmentKindFlight && c.role(seg) == RoleConnective
}

// ValidateSegment checks that seg carries the fields the engine relies on.
// index is reported back in the error; pass -1 when unknown.
func ValidateSegment(index int, seg domain.Segment) error {
	malformed := func(field, reason string) error {
		return &domain.MalformedSegmentError{Index: index, SegmentID: seg.ID, Field: field, Reason: reason}
	}

	switch {
	case !seg.Kind.Valid():
		return malformed("kind", "is not a known segment kind: "+string(seg.Kind))
	case !seg.Provenance.Valid():
		return malformed("provenance", "is not IMPORTED or SYNTHESIZED: "+string(seg.Provenance))
	case seg.StartLocation.IsZero():
		return malformed("start_location", "has neither id nor label")
	case seg.EndLocation.IsZero():
		return malformed("end_location", "has neither id nor label")
	case seg.StartTime.IsZero():
		return malformed("start_time", "is missing")
	case seg.EndTime.IsZero():
		return malformed("end_time", "is missing")
	case seg.EndTime.Before(seg.StartTime):
		return malformed("end_time", "is before start_time")
	case seg.Confidence < 0 || seg.Confidence > 1:
		return malformed("confidence", "is outside [0,1]")
	}
	return nil
}
