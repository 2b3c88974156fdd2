package alert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrAlertDelivery is returned when the SMS gateway rejects or misses a send.
	ErrAlertDelivery = errors.New("alert delivery failed")

	// ErrPartialLocation is returned when only one of latitude and longitude is given.
	ErrPartialLocation = errors.New("latitude and longitude must be given together")
)

// Defaults for the hospital navigation link.
const (
	DefaultMapsBaseURL = "https://www.google.com/maps"
	DefaultZoom        = 14
)

// Location is a geolocation fix supplied by the caller.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewLocation builds a Location from optional coordinates. Both absent yields
// nil; exactly one present is an error.
func NewLocation(lat, lon *float64) (*Location, error) {
	switch {
	case lat == nil && lon == nil:
		return nil, nil
	case lat == nil || lon == nil:
		return nil, ErrPartialLocation
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return nil, fmt.Errorf("coordinates out of range: %v,%v", *lat, *lon)
	}
	return &Location{Latitude: *lat, Longitude: *lon}, nil
}

// Decision is the outcome of classifying a triage reply.
type Decision struct {
	Critical bool   `json:"critical"`
	Level    int    `json:"level,omitempty"`
	Method   string `json:"method"`
	MapURL   string `json:"map_url,omitempty"`
}

// MapLink builds "navigate to the nearest hospital" URLs.
type MapLink struct {
	BaseURL string
	Zoom    int
}

// URL returns a hospital search centred on loc. Coordinates use the shortest
// decimal form that round-trips, so they read back exactly as supplied.
func (m MapLink) URL(loc Location) string {
	base := m.BaseURL
	if base == "" {
		base = DefaultMapsBaseURL
	}
	zoom := m.Zoom
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return fmt.Sprintf("%s/search/hospital/@%s,%s,%dz",
		strings.TrimSuffix(base, "/"),
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		zoom,
	)
}
