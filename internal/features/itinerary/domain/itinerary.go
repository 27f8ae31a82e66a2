package domain

import "time"

// Itinerary is the aggregate that owns an ordered list of segments.
type Itinerary struct {
	// ID is the itinerary identifier used by the calling layers.
	ID string `json:"id"`
	// Segments is the repaired, chronologically ordered sequence.
	Segments []Segment `json:"segments"`
	// Diagnostics are the findings of the last repair.
	Diagnostics []Diagnostic `json:"diagnostics"`
	// UpdatedAt is when the snapshot was last written back.
	UpdatedAt time.Time `json:"updated_at"`
}

// RepairStats counts what happened during a repair.
type RepairStats struct {
	GapsDetected   int `json:"gaps_detected"`
	GapsSuppressed int `json:"gaps_suppressed"`
	Synthesized    int `json:"synthesized"`
	FalsePositives int `json:"false_positives"`
	Conflicts      int `json:"conflicts"`
	Unresolved     int `json:"unresolved"`
	Retracted      int `json:"retracted"`
}

// RepairResult is the output of a repair over one itinerary snapshot.
type RepairResult struct {
	ItineraryID string       `json:"itinerary_id"`
	Segments    []Segment    `json:"segments"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Stats       RepairStats  `json:"stats"`
}
