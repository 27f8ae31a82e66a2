package continuity

import "time"

// Config holds the tunable parameters of the engine.
type Config struct {
	// MinTransferDuration is the length given to a synthesized transfer when
	// the previous segment ends exactly when the next one starts.
	MinTransferDuration time.Duration
	// SynthesisConfidence is the heuristic weight of synthesized transfers. It
	// is always capped below the lowest imported confidence.
	SynthesisConfidence float64
	// OverlapTolerance is how far two imported windows may overlap before a
	// schedule conflict is reported.
	OverlapTolerance time.Duration
	// ProximityMeters is the distance within which two coordinates denote the
	// same place.
	ProximityMeters float64
	// MinContainmentLength is the shortest name accepted for substring matching.
	MinContainmentLength int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MinTransferDuration:  15 * time.Minute,
		SynthesisConfidence:  0.4,
		OverlapTolerance:     0,
		ProximityMeters:      250,
		MinContainmentLength: 3,
	}
}

// withDefaults fills zero or out-of-range values from DefaultConfig.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MinTransferDuration <= 0 {
		c.MinTransferDuration = defaults.MinTransferDuration
	}
	if c.SynthesisConfidence <= 0 || c.SynthesisConfidence > 1 {
		c.SynthesisConfidence = defaults.SynthesisConfidence
	}
	if c.OverlapTolerance < 0 {
		c.OverlapTolerance = defaults.OverlapTolerance
	}
	if c.ProximityMeters <= 0 {
		c.ProximityMeters = defaults.ProximityMeters
	}
	if c.MinContainmentLength <= 0 {
		c.MinContainmentLength = defaults.MinContainmentLength
	}
	return c
}
