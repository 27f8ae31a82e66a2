// Package continuity repairs the segment sequence of an itinerary: it finds
// location gaps between adjacent segments, inserts ground transfers where one
// is genuinely missing, and reports schedule conflicts.
//
// The engine is a pure function over a snapshot. It holds no state between
// calls and is safe for concurrent use; serializing repairs of the same
// itinerary is the caller's job.
package continuity

import (
	"fmt"
	"sort"

	"trip-stitcher/internal/features/itinerary/domain"
)

// Engine wires the classifier, detector, resolver and normalizer together.
type Engine struct {
	cfg        Config
	matcher    LocationMatcher
	classifier *Classifier
	detector   *Detector
	resolver   *Resolver
	normalizer *Normalizer
}

// Option customises an Engine.
type Option func(*Engine)

// WithMatcher replaces the default FuzzyMatcher.
func WithMatcher(m LocationMatcher) Option {
	return func(e *Engine) {
		e.matcher = m
	}
}

// NewEngine creates an Engine. Zero config values fall back to DefaultConfig.
func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{cfg: cfg, matcher: NewFuzzyMatcher(cfg)}
	for _, opt := range opts {
		opt(e)
	}

	e.classifier = NewClassifier(e.matcher)
	e.detector = NewDetector(e.classifier, e.matcher, cfg.OverlapTolerance)
	e.resolver = NewResolver(e.classifier, cfg)
	e.normalizer = NewNormalizer(e.classifier, e.matcher, e.resolver, cfg.OverlapTolerance)
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Classify exposes the classifier used by the engine.
func (e *Engine) Classify(seg domain.Segment) (Role, error) {
	return e.classifier.Classify(seg)
}

// Repair returns the repaired sequence for one itinerary snapshot. The input
// slice and its segments are left untouched.
func (e *Engine) Repair(itineraryID string, segments []domain.Segment) (*domain.RepairResult, error) {
	for i, seg := range segments {
		if err := ValidateSegment(i, seg); err != nil {
			return nil, err
		}
	}

	ordered := sortChronologically(segments)
	kept, retracted := e.retractStale(ordered)

	detection, err := e.detector.Detect(kept)
	if err != nil {
		return nil, err
	}

	resolution, err := e.resolver.Resolve(kept, detection.Reports)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gaps: %w", err)
	}

	if err := e.normalizer.Validate(resolution.Segments, resolution.Diagnostics); err != nil {
		return nil, err
	}

	diagnostics := make([]domain.Diagnostic, 0, len(retracted)+len(resolution.Diagnostics))
	for _, seg := range retracted {
		diagnostics = append(diagnostics, domain.Diagnostic{
			Severity: domain.SeverityInfo,
			Kind:     domain.DiagnosticSynthesisRetracted,
			Message: fmt.Sprintf("removed transfer from %q to %q that no longer bridges its neighbours",
				seg.StartLocation.DisplayName(), seg.EndLocation.DisplayName()),
			SegmentRefs: []domain.SegmentRef{{ID: seg.ID, Index: -1}},
		})
	}
	diagnostics = append(diagnostics, resolution.Diagnostics...)

	stats := resolution.Stats
	stats.GapsSuppressed = detection.Suppressed()
	stats.Retracted = len(retracted)

	return &domain.RepairResult{
		ItineraryID: itineraryID,
		Segments:    resolution.Segments,
		Diagnostics: diagnostics,
		Stats:       stats,
	}, nil
}

// retractStale drops synthesized segments from an earlier repair that no
// longer exactly bridge a gap between two imported neighbours, typically
// because one of the neighbours was edited. The gap, if still present, is
// re-derived by the detector.
func (e *Engine) retractStale(ordered []domain.Segment) (kept, retracted []domain.Segment) {
	kept = make([]domain.Segment, 0, len(ordered))
	for i, seg := range ordered {
		if seg.IsSynthesized() && !e.stillBridges(ordered, i) {
			retracted = append(retracted, seg)
			continue
		}
		kept = append(kept, seg)
	}
	return kept, retracted
}

func (e *Engine) stillBridges(ordered []domain.Segment, i int) bool {
	if i == 0 || i == len(ordered)-1 {
		return false
	}
	prev, seg, next := ordered[i-1], ordered[i], ordered[i+1]

	switch {
	case !prev.IsImported() || !next.IsImported():
		return false
	case e.matcher.Equivalent(prev.EndLocation, next.StartLocation):
		return false
	case next.StartTime.Before(prev.EndTime):
		return false
	case e.classifier.isGroundConnector(prev) || e.classifier.isGroundConnector(next):
		return false
	}
	return e.normalizer.bridges(prev, seg, next)
}

// sortChronologically returns a copy of segments stably sorted by start time,
// so ties keep their extraction order.
func sortChronologically(segments []domain.Segment) []domain.Segment {
	ordered := make([]domain.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})
	return ordered
}
