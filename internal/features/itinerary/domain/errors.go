package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSegment is matched by every MalformedSegmentError.
	ErrMalformedSegment = errors.New("malformed segment")
	// ErrIntegrityViolation is matched by every IntegrityViolationError.
	ErrIntegrityViolation = errors.New("itinerary integrity violation")
)

// MalformedSegmentError reports a segment missing required location or time data.
type MalformedSegmentError struct {
	Index     int
	SegmentID string
	Field     string
	Reason    string
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("malformed segment %q at index %d: %s %s", e.SegmentID, e.Index, e.Field, e.Reason)
}

func (e *MalformedSegmentError) Unwrap() error {
	return ErrMalformedSegment
}

// IntegrityViolationError reports a continuity invariant broken after resolution.
// It indicates a defect in the engine rather than bad input.
type IntegrityViolationError struct {
	Invariant string
	Before    SegmentRef
	After     SegmentRef
	Detail    string
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("%s violated between %q (#%d) and %q (#%d): %s",
		e.Invariant, e.Before.ID, e.Before.Index, e.After.ID, e.After.Index, e.Detail)
}

func (e *IntegrityViolationError) Unwrap() error {
	return ErrIntegrityViolation
}
