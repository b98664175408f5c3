package domain

import "math"

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the WGS-84 coordinate ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// IsZero reports whether the point is exactly (0, 0).
// Backends emit (0, 0) when a location is unknown, so callers treat it as missing.
func (p GeoPoint) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

// Return coordinates as [lat, lng] for external API compatibility.
func (p GeoPoint) CoordsToList() []float64 { return []float64{p.Latitude, p.Longitude} }
