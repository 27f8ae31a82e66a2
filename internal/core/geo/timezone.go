package geo

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// TimezoneResolver maps coordinates to an IANA time zone.
type TimezoneResolver struct {
	once   sync.Once
	finder tzf.F
	err    error
}

// NewTimezoneResolver creates a resolver. The polygon data is loaded on first use.
func NewTimezoneResolver() *TimezoneResolver {
	return &TimezoneResolver{}
}

func (r *TimezoneResolver) load() {
	r.once.Do(func() {
		r.finder, r.err = tzf.NewDefaultFinder()
	})
}

// Name returns the IANA zone name at the given position, or "" when the
// point falls outside every zone polygon.
func (r *TimezoneResolver) Name(lat, lon float64) (string, error) {
	r.load()
	if r.err != nil {
		return "", fmt.Errorf("failed to load timezone data: %w", r.err)
	}
	return r.finder.GetTimezoneName(lon, lat), nil
}

// Location returns the *time.Location at the given position.
func (r *TimezoneResolver) Location(lat, lon float64) (*time.Location, error) {
	name, err := r.Name(lat, lon)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("no timezone found at %.5f,%.5f", lat, lon)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %s: %w", name, err)
	}
	return loc, nil
}
