package continuity

import (
	"time"

	"trip-stitcher/internal/features/itinerary/domain"
)

// Invariant names used in IntegrityViolationError.
const (
	InvariantChronology   = "chronology"
	InvariantContinuity   = "continuity"
	InvariantNoRedundancy = "no redundant connectors"
	InvariantMinimality   = "synthesis minimality"
)

// Normalizer re-validates a resolved sequence. A failure here means the
// detector or resolver has a defect; it is not a user-facing error path.
type Normalizer struct {
	classifier       *Classifier
	matcher          LocationMatcher
	resolver         *Resolver
	overlapTolerance time.Duration
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(classifier *Classifier, matcher LocationMatcher, resolver *Resolver, overlapTolerance time.Duration) *Normalizer {
	return &Normalizer{
		classifier:       classifier,
		matcher:          matcher,
		resolver:         resolver,
		overlapTolerance: overlapTolerance,
	}
}

// Validate checks every invariant over segments, given the diagnostics the resolver
// attached to them.
func (n *Normalizer) Validate(segments []domain.Segment, diagnostics []domain.Diagnostic) error {
	for i := 1; i < len(segments); i++ {
		prev, next := segments[i-1], segments[i]

		if next.StartTime.Before(prev.StartTime) {
			return violation(InvariantChronology, segments, i-1, i, "segments are not sorted by start time")
		}

		if prev.IsImported() && next.IsImported() &&
			next.StartTime.Before(prev.EndTime.Add(-n.overlapTolerance)) &&
			!pairDiagnosed(diagnostics, domain.DiagnosticScheduleConflict, i-1, i) {
			return violation(InvariantChronology, segments, i-1, i, "overlapping imported segments without a schedule conflict")
		}

		if !n.equivalent(prev.EndLocation, next.StartLocation) &&
			!(ExactMatcher{}).Equivalent(prev.EndLocation, next.StartLocation) &&
			!pairDiagnosed(diagnostics, domain.DiagnosticUnresolvedGap, i-1, i) {
			return violation(InvariantContinuity, segments, i-1, i, "locations differ and no gap is reported")
		}
	}

	for i, seg := range segments {
		if !seg.IsSynthesized() {
			continue
		}
		if i == 0 || i == len(segments)-1 {
			return violation(InvariantMinimality, segments, i, i, "synthesized transfer is not between two segments")
		}
		if err := n.validateSynthesized(segments, i); err != nil {
			return err
		}
	}
	return nil
}

func (n *Normalizer) validateSynthesized(segments []domain.Segment, i int) error {
	prev, seg, next := segments[i-1], segments[i], segments[i+1]

	if n.classifier.isGroundConnector(prev) {
		return violation(InvariantNoRedundancy, segments, i-1, i, "synthesized transfer follows another connector")
	}
	if n.classifier.isGroundConnector(next) {
		return violation(InvariantNoRedundancy, segments, i, i+1, "synthesized transfer precedes another connector")
	}
	if !n.bridges(prev, seg, next) {
		return violation(InvariantMinimality, segments, i-1, i+1, "synthesized transfer does not bridge its neighbours")
	}
	if n.matcher.Equivalent(prev.EndLocation, next.StartLocation) {
		return violation(InvariantMinimality, segments, i-1, i+1, "neighbours are already continuous")
	}
	return nil
}

// equivalent accepts either argument order, matching the detector's
// forward and backward bridging rules.
func (n *Normalizer) equivalent(a, b domain.Location) bool {
	return n.matcher.Equivalent(a, b) || n.matcher.Equivalent(b, a)
}

// bridges reports whether seg exactly spans the gap between prev and next.
func (n *Normalizer) bridges(prev, seg, next domain.Segment) bool {
	return sameLocation(prev.EndLocation, seg.StartLocation) &&
		sameLocation(seg.EndLocation, next.StartLocation) &&
		seg.StartTime.Equal(prev.EndTime) &&
		seg.EndTime.Equal(n.resolver.expectedTransferEnd(prev, next))
}

func pairDiagnosed(diagnostics []domain.Diagnostic, kind domain.DiagnosticKind, a, b int) bool {
	for _, d := range diagnostics {
		if d.Kind == kind && d.ReferencesIndex(a) && d.ReferencesIndex(b) {
			return true
		}
	}
	return false
}

func violation(invariant string, segments []domain.Segment, before, after int, detail string) error {
	return &domain.IntegrityViolationError{
		Invariant: invariant,
		Before:    domain.SegmentRef{ID: segments[before].ID, Index: before},
		After:     domain.SegmentRef{ID: segments[after].ID, Index: after},
		Detail:    detail,
	}
}
