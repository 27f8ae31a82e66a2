package domain

// Severity is the importance of a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
)

// DiagnosticKind classifies what a diagnostic reports.
type DiagnosticKind string

const (
	// DiagnosticTransferSynthesized notes that a transfer was inserted.
	DiagnosticTransferSynthesized DiagnosticKind = "TRANSFER_SYNTHESIZED"
	// DiagnosticScheduleConflict flags two imported segments whose windows overlap.
	DiagnosticScheduleConflict DiagnosticKind = "SCHEDULE_CONFLICT"
	// DiagnosticUnresolvedGap flags a location gap that needs a human to resolve.
	DiagnosticUnresolvedGap DiagnosticKind = "UNRESOLVED_GAP"
	// DiagnosticSynthesisRetracted notes that a stale synthesized segment was removed.
	DiagnosticSynthesisRetracted DiagnosticKind = "SYNTHESIS_RETRACTED"
)

// SegmentRef points at a segment in the repaired sequence.
type SegmentRef struct {
	ID string `json:"id"`
	// Index is the position in the repaired sequence, or -1 when the segment
	// is no longer part of it.
	Index int `json:"index"`
}

// Diagnostic is a non-fatal finding attached to an itinerary for display.
type Diagnostic struct {
	Severity    Severity       `json:"severity"`
	Kind        DiagnosticKind `json:"kind"`
	Message     string         `json:"message"`
	SegmentRefs []SegmentRef   `json:"segment_refs"`
}

// ReferencesIndex reports whether the diagnostic mentions the segment at
// position index of the repaired sequence.
func (d Diagnostic) ReferencesIndex(index int) bool {
	for _, ref := range d.SegmentRefs {
		if ref.Index == index {
			return true
		}
	}
	return false
}
