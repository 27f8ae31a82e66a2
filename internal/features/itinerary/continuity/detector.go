package continuity

import (
	"time"

	"trip-stitcher/internal/features/itinerary/domain"
)

// GapKind is the type of discontinuity found between two adjacent segments.
type GapKind string

const (
	// GapLocation means the locations differ and nothing connects them.
	GapLocation GapKind = "LOCATION_GAP"
	// GapTimeOverlap means two imported windows overlap. It is a conflict,
	// never resolved by synthesis.
	GapTimeOverlap GapKind = "TIME_OVERLAP"
)

// Rule names, reported on GapReport and counted in Detection.RuleHits.
const (
	RulePrevBridgesForward  = "prev-bridges-forward"
	RuleNextBridgesBackward = "next-bridges-backward"
	RuleLocationsAligned    = "locations-aligned"
	RuleLocationGap         = "location-gap"
	RuleTimeOverlap         = "time-overlap"
)

// GapReport describes a discontinuity between ordered[After] and ordered[Before].
type GapReport struct {
	After  int
	Before int
	Kind   GapKind
	Rule   string
}

// Detection is the output of a detector pass.
type Detection struct {
	Reports []GapReport
	// RuleHits counts how often each rule decided a pair.
	RuleHits map[string]int
}

// Suppressed returns how many pairs were covered by an existing connector.
func (d *Detection) Suppressed() int {
	return d.RuleHits[RulePrevBridgesForward] + d.RuleHits[RuleNextBridgesBackward]
}

// adjacentPair is the view a continuity rule evaluates.
type adjacentPair struct {
	prev     domain.Segment
	next     domain.Segment
	prevRole Role
	nextRole Role
}

// continuityRule maps a predicate over an adjacent pair to an outcome. An
// empty gap means the pair is continuous.
type continuityRule struct {
	name    string
	applies func(p adjacentPair, m LocationMatcher) bool
	gap     GapKind
}

// continuityRules is evaluated top to bottom and the first match wins. The
// connector checks must come before the plain location comparison, otherwise
// every location change already serviced by a transfer would be flagged.
var continuityRules = []continuityRule{
	{
		name: RulePrevBridgesForward,
		applies: func(p adjacentPair, m LocationMatcher) bool {
			return p.prevRole == RoleConnective && m.Equivalent(p.prev.EndLocation, p.next.StartLocation)
		},
	},
	{
		name: RuleNextBridgesBackward,
		applies: func(p adjacentPair, m LocationMatcher) bool {
			return p.nextRole == RoleConnective && m.Equivalent(p.next.StartLocation, p.prev.EndLocation)
		},
	},
	{
		name: RuleLocationsAligned,
		applies: func(p adjacentPair, m LocationMatcher) bool {
			return m.Equivalent(p.prev.EndLocation, p.next.StartLocation)
		},
	},
	{
		name:    RuleLocationGap,
		applies: func(adjacentPair, LocationMatcher) bool { return true },
		gap:     GapLocation,
	},
}

// Detector reports discontinuities in a chronologically ordered sequence.
type Detector struct {
	classifier       *Classifier
	matcher          LocationMatcher
	overlapTolerance time.Duration
}

// NewDetector creates a Detector.
func NewDetector(classifier *Classifier, matcher LocationMatcher, overlapTolerance time.Duration) *Detector {
	return &Detector{
		classifier:       classifier,
		matcher:          matcher,
		overlapTolerance: overlapTolerance,
	}
}

// Detect walks ordered pairwise. ordered must already be sorted by start time.
func (d *Detector) Detect(ordered []domain.Segment) (*Detection, error) {
	det := &Detection{RuleHits: make(map[string]int)}
	if len(ordered) < 2 {
		return det, nil
	}

	roles := make([]Role, len(ordered))
	for i, seg := range ordered {
		if err := ValidateSegment(i, seg); err != nil {
			return nil, err
		}
		roles[i] = d.classifier.role(seg)
	}

	for i := 0; i < len(ordered)-1; i++ {
		p := adjacentPair{
			prev:     ordered[i],
			next:     ordered[i+1],
			prevRole: roles[i],
			nextRole: roles[i+1],
		}

		for _, rule := range continuityRules {
			if !rule.applies(p, d.matcher) {
				continue
			}
			det.RuleHits[rule.name]++
			if rule.gap != "" {
				det.Reports = append(det.Reports, GapReport{After: i, Before: i + 1, Kind: rule.gap, Rule: rule.name})
			}
			break
		}

		if d.overlaps(p.prev, p.next) {
			det.RuleHits[RuleTimeOverlap]++
			det.Reports = append(det.Reports, GapReport{After: i, Before: i + 1, Kind: GapTimeOverlap, Rule: RuleTimeOverlap})
		}
	}

	return det, nil
}

// overlaps reports a schedule conflict between two imported segments.
func (d *Detector) overlaps(prev, next domain.Segment) bool {
	if !prev.IsImported() || !next.IsImported() {
		return false
	}
	return next.StartTime.Before(prev.EndTime.Add(-d.overlapTolerance))
}
