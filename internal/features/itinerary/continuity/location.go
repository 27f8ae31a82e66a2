package continuity

import (
	"fmt"
	"strings"
	"unicode"

	"trip-stitcher/internal/core/geo"
	"trip-stitcher/internal/features/itinerary/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LocationMatcher decides whether two locations denote the same place.
// Implementations must be reflexive for non-empty locations.
type LocationMatcher interface {
	Equivalent(a, b domain.Location) bool
}

// Matcher names accepted by NewMatcher.
const (
	MatcherFuzzy     = "fuzzy"
	MatcherExact     = "exact"
	MatcherProximity = "proximity"
)

// NewMatcher returns the LocationMatcher registered under name. An empty name
// selects the FuzzyMatcher.
func NewMatcher(name string, cfg Config) (LocationMatcher, error) {
	cfg = cfg.withDefaults()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MatcherFuzzy:
		return NewFuzzyMatcher(cfg), nil
	case MatcherExact:
		return ExactMatcher{}, nil
	case MatcherProximity:
		return ProximityMatcher{Meters: cfg.ProximityMeters, Fallback: ExactMatcher{}}, nil
	default:
		return nil, fmt.Errorf("unknown location matcher %q", name)
	}
}

// sameSpotMeters is how far apart two coordinates may be and still count as
// the same spot for ExactMatcher.
const sameSpotMeters = 25

// ExactMatcher matches identical identifiers, or identical normalized labels
// when either side has no identifier. Coordinates more than sameSpotMeters
// apart always mean different places.
type ExactMatcher struct{}

// Equivalent implements LocationMatcher.
func (ExactMatcher) Equivalent(a, b domain.Location) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	if sameLocation(a, b) {
		return true
	}
	if a.Coordinates != nil && b.Coordinates != nil && distance(a, b) > sameSpotMeters {
		return false
	}
	aID, bID := strings.TrimSpace(a.ID), strings.TrimSpace(b.ID)
	if aID != "" && bID != "" {
		return strings.EqualFold(aID, bID)
	}
	aLabel, bLabel := normalizeName(a.Label), normalizeName(b.Label)
	return aLabel != "" && aLabel == bLabel
}

// ProximityMatcher treats two locations with coordinates as equivalent when
// they lie within Meters of each other. Locations without coordinates are
// delegated to Fallback.
type ProximityMatcher struct {
	Meters   float64
	Fallback LocationMatcher
}

// Equivalent implements LocationMatcher.
func (m ProximityMatcher) Equivalent(a, b domain.Location) bool {
	if a.Coordinates != nil && b.Coordinates != nil {
		return distance(a, b) <= m.Meters
	}
	if m.Fallback == nil {
		return ExactMatcher{}.Equivalent(a, b)
	}
	return m.Fallback.Equivalent(a, b)
}

// FuzzyMatcher tolerates the inconsistent naming found in travel documents.
//
// Comparison order:
//   - identical identifiers match;
//   - when both sides carry coordinates, proximity decides;
//   - identical normalized labels or addresses match;
//   - otherwise one normalized label must appear as whole words inside the
//     other, and the shorter one must be at least MinContainmentLength runes.
//     Identifiers never take part in containment, so "ATH" does not match
//     "Athens Hilton".
//
// Anything else is reported as not equivalent, so ambiguous pairs lead to a
// synthesized transfer rather than a silently dropped gap.
type FuzzyMatcher struct {
	ProximityMeters      float64
	MinContainmentLength int
}

// NewFuzzyMatcher builds a FuzzyMatcher from engine configuration.
func NewFuzzyMatcher(cfg Config) FuzzyMatcher {
	cfg = cfg.withDefaults()
	return FuzzyMatcher{
		ProximityMeters:      cfg.ProximityMeters,
		MinContainmentLength: cfg.MinContainmentLength,
	}
}

// Equivalent implements LocationMatcher.
func (m FuzzyMatcher) Equivalent(a, b domain.Location) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	if sameLocation(a, b) {
		return true
	}

	aID, bID := strings.TrimSpace(a.ID), strings.TrimSpace(b.ID)
	if aID != "" && strings.EqualFold(aID, bID) {
		return true
	}

	if a.Coordinates != nil && b.Coordinates != nil {
		return distance(a, b) <= m.ProximityMeters
	}

	aNames, bNames := names(a), names(b)
	for _, x := range aNames {
		for _, y := range bNames {
			if x == y {
				return true
			}
		}
	}

	if addrA, addrB := normalizeName(a.Address), normalizeName(b.Address); addrA != "" && addrA == addrB {
		return true
	}

	return m.contains(normalizeName(a.Label), normalizeName(b.Label))
}

func (m FuzzyMatcher) contains(x, y string) bool {
	shorter, longer := x, y
	if len([]rune(shorter)) > len([]rune(longer)) {
		shorter, longer = longer, shorter
	}
	if shorter == "" || len([]rune(shorter)) < m.MinContainmentLength {
		return false
	}
	return strings.Contains(" "+longer+" ", " "+shorter+" ")
}

// names returns the normalized label and identifier of a location.
func names(l domain.Location) []string {
	out := make([]string, 0, 2)
	if n := normalizeName(l.Label); n != "" {
		out = append(out, n)
	}
	if n := normalizeName(l.ID); n != "" && (len(out) == 0 || out[0] != n) {
		out = append(out, n)
	}
	return out
}

// normalizeName strips diacritics, folds case and collapses punctuation and
// whitespace runs into single spaces.
func normalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

func distance(a, b domain.Location) float64 {
	return geo.DistanceMeters(a.Coordinates.Lat, a.Coordinates.Lon, b.Coordinates.Lat, b.Coordinates.Lon)
}

// sameLocation reports field-for-field equality, used to recognise locations
// the engine copied from a neighbouring segment.
func sameLocation(a, b domain.Location) bool {
	if a.ID != b.ID || a.Label != b.Label || a.Address != b.Address {
		return false
	}
	if a.Coordinates == nil || b.Coordinates == nil {
		return a.Coordinates == nil && b.Coordinates == nil
	}
	return *a.Coordinates == *b.Coordinates
}
