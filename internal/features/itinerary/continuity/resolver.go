package continuity

import (
	"fmt"
	"time"

	"trip-stitcher/internal/features/itinerary/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// synthesizedNamespace seeds the deterministic ids of synthesized transfers so
// that repairing an already repaired sequence reproduces the same ids.
var synthesizedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trip-stitcher/synthesized-transfer"))

// gapAction is what the resolver does with a LOCATION_GAP.
type gapAction int

const (
	actionSynthesize gapAction = iota
	actionFlag
	actionDrop
)

// gapPolicy is one row of the resolver's policy table.
type gapPolicy struct {
	name    string
	applies func(r *Resolver, prev, next domain.Segment) bool
	action  gapAction
	reason  string
}

// gapPolicies is evaluated top to bottom; the first match decides.
var gapPolicies = []gapPolicy{
	{
		name: "overlapping-window",
		applies: func(_ *Resolver, prev, next domain.Segment) bool {
			return next.StartTime.Before(prev.EndTime)
		},
		action: actionFlag,
		reason: "next segment starts before the previous one ends, a transfer cannot be scheduled",
	},
	{
		// Inserting here would put two connectors side by side. The neighbouring
		// connector most likely carries a mislabelled endpoint.
		name: "adjacent-connector",
		applies: func(r *Resolver, prev, next domain.Segment) bool {
			return r.classifier.isGroundConnector(prev) || r.classifier.isGroundConnector(next)
		},
		action: actionFlag,
		reason: "a neighbouring transfer already ends or starts here under a different name",
	},
	{
		name: "zero-window-same-place",
		applies: func(_ *Resolver, prev, next domain.Segment) bool {
			return prev.EndTime.Equal(next.StartTime) && (ExactMatcher{}).Equivalent(prev.EndLocation, next.StartLocation)
		},
		action: actionDrop,
	},
	{
		name:    "synthesize",
		applies: func(*Resolver, domain.Segment, domain.Segment) bool { return true },
		action:  actionSynthesize,
	},
}

// Resolution is the resolver output before normalization.
type Resolution struct {
	Segments    []domain.Segment
	Diagnostics []domain.Diagnostic
	Stats       domain.RepairStats
}

// Resolver applies policy to gap reports and builds the repaired sequence.
type Resolver struct {
	classifier *Classifier
	cfg        Config
}

// NewResolver creates a Resolver.
func NewResolver(classifier *Classifier, cfg Config) *Resolver {
	return &Resolver{classifier: classifier, cfg: cfg.withDefaults()}
}

// pendingDiagnostic references segments by their position in the input
// until output positions are known.
type pendingDiagnostic struct {
	diag    domain.Diagnostic
	inputs  []int
	outputs []int
}

// Resolve inserts synthesized transfers for location gaps and turns the
// remaining reports into diagnostics. Input segments are never modified.
func (r *Resolver) Resolve(ordered []domain.Segment, reports []GapReport) (*Resolution, error) {
	res := &Resolution{}
	gapsAfter := lo.GroupBy(reports, func(g GapReport) int { return g.After })
	confidence := r.synthesisConfidence(ordered)

	out := make([]domain.Segment, 0, len(ordered)+len(reports))
	outIndex := make([]int, len(ordered))
	var pending []pendingDiagnostic

	for i, seg := range ordered {
		outIndex[i] = len(out)
		out = append(out, seg)

		for _, gap := range gapsAfter[i] {
			if gap.Before != i+1 || gap.Before >= len(ordered) {
				return nil, fmt.Errorf("gap report %s does not reference an adjacent pair: %d -> %d", gap.Kind, gap.After, gap.Before)
			}
			prev, next := ordered[i], ordered[i+1]

			switch gap.Kind {
			case GapTimeOverlap:
				res.Stats.Conflicts++
				pending = append(pending, pendingDiagnostic{
					diag: domain.Diagnostic{
						Severity: domain.SeverityWarning,
						Kind:     domain.DiagnosticScheduleConflict,
						Message: fmt.Sprintf("%s %s overlaps %s %s by %s",
							prev.Kind, prev.ID, next.Kind, next.ID, prev.EndTime.Sub(next.StartTime)),
					},
					inputs: []int{i, i + 1},
				})

			case GapLocation:
				res.Stats.GapsDetected++
				policy := r.policyFor(prev, next)

				switch policy.action {
				case actionDrop:
					res.Stats.FalsePositives++
				case actionFlag:
					res.Stats.Unresolved++
					pending = append(pending, pendingDiagnostic{
						diag: domain.Diagnostic{
							Severity: domain.SeverityWarning,
							Kind:     domain.DiagnosticUnresolvedGap,
							Message: fmt.Sprintf("no connection from %q to %q: %s",
								prev.EndLocation.DisplayName(), next.StartLocation.DisplayName(), policy.reason),
						},
						inputs: []int{i, i + 1},
					})
				case actionSynthesize:
					transfer := r.synthesize(prev, next, confidence)
					res.Stats.Synthesized++
					pending = append(pending, pendingDiagnostic{
						diag: domain.Diagnostic{
							Severity: domain.SeverityInfo,
							Kind:     domain.DiagnosticTransferSynthesized,
							Message: fmt.Sprintf("added transfer from %q to %q",
								transfer.StartLocation.DisplayName(), transfer.EndLocation.DisplayName()),
						},
						inputs:  []int{i, i + 1},
						outputs: []int{len(out)},
					})
					out = append(out, transfer)
				}

			default:
				return nil, fmt.Errorf("unknown gap kind %q", gap.Kind)
			}
		}
	}

	for _, p := range pending {
		refs := make([]domain.SegmentRef, 0, len(p.inputs)+len(p.outputs))
		for _, idx := range p.inputs {
			refs = append(refs, domain.SegmentRef{ID: ordered[idx].ID, Index: outIndex[idx]})
		}
		for _, idx := range p.outputs {
			refs = append(refs, domain.SegmentRef{ID: out[idx].ID, Index: idx})
		}
		p.diag.SegmentRefs = refs
		res.Diagnostics = append(res.Diagnostics, p.diag)
	}

	res.Segments = out
	return res, nil
}

func (r *Resolver) policyFor(prev, next domain.Segment) gapPolicy {
	for _, p := range gapPolicies {
		if p.applies(r, prev, next) {
			return p
		}
	}
	return gapPolicies[len(gapPolicies)-1]
}

// synthesize builds the transfer bridging prev and next.
func (r *Resolver) synthesize(prev, next domain.Segment, confidence float64) domain.Segment {
	start := prev.EndTime
	end := next.StartTime
	if !end.After(start) {
		end = start.Add(r.cfg.MinTransferDuration)
	}

	return domain.Segment{
		ID:            synthesizedID(prev, next),
		Kind:          domain.SegmentKindTransfer,
		StartLocation: cloneLocation(prev.EndLocation),
		EndLocation:   cloneLocation(next.StartLocation),
		StartTime:     start,
		EndTime:       end,
		Provenance:    domain.ProvenanceSynthesized,
		Confidence:    confidence,
	}
}

// expectedTransferEnd mirrors synthesize for the stale-transfer check.
func (r *Resolver) expectedTransferEnd(prev, next domain.Segment) time.Time {
	if !next.StartTime.After(prev.EndTime) {
		return prev.EndTime.Add(r.cfg.MinTransferDuration)
	}
	return next.StartTime
}

// synthesisConfidence keeps synthesized transfers strictly below every
// imported segment.
func (r *Resolver) synthesisConfidence(ordered []domain.Segment) float64 {
	imported := lo.Filter(ordered, func(s domain.Segment, _ int) bool { return s.IsImported() })
	if len(imported) == 0 {
		return r.cfg.SynthesisConfidence
	}
	lowest := lo.MinBy(imported, func(a, b domain.Segment) bool { return a.Confidence < b.Confidence }).Confidence
	if r.cfg.SynthesisConfidence < lowest {
		return r.cfg.SynthesisConfidence
	}
	return lowest / 2
}

func synthesizedID(prev, next domain.Segment) string {
	key := fmt.Sprintf("%s|%s|%s|%s",
		prev.ID, next.ID,
		prev.EndTime.UTC().Format(time.RFC3339Nano),
		next.StartTime.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(synthesizedNamespace, []byte(key)).String()
}

func cloneLocation(l domain.Location) domain.Location {
	if l.Coordinates != nil {
		c := *l.Coordinates
		l.Coordinates = &c
	}
	return l
}
