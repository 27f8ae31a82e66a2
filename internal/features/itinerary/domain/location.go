package domain

import "strings"

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Location identifies a place a segment starts or ends at.
type Location struct {
	// ID is a stable identifier such as an IATA code or a provider place id.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Label is the human-readable name as printed on the source document.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Address is the street address when the document carries one.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	// Coordinates are optional and only present when the importer had them.
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// IsZero reports whether the location carries neither an identifier nor a label.
func (l Location) IsZero() bool {
	return strings.TrimSpace(l.ID) == "" && strings.TrimSpace(l.Label) == ""
}

// DisplayName returns the label, falling back to the identifier.
func (l Location) DisplayName() string {
	if strings.TrimSpace(l.Label) != "" {
		return l.Label
	}
	return l.ID
}
