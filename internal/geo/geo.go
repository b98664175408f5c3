// Package geo provides the geodesic helpers used to rank and draw routes.
//
// Distances use the haversine formula on a spherical Earth. Polylines are
// interpolated linearly in latitude/longitude space, which drifts from the
// true great-circle path over a few hundred kilometres. That is a known
// approximation: the client has no road-network data, and the lines are only
// drawn on a map.
package geo

import (
	"fmt"
	"math"
	"time"

	"water-route-service/internal/domain"
)

// EarthRadiusKm is the mean radius of Earth in kilometers.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(a, b domain.GeoPoint) float64 {
	if a == b {
		return 0
	}
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Latitude))*math.Cos(degToRad(b.Latitude))*sinLon*sinLon
	// Rounding can push h a hair above 1 for antipodal points.
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Interpolate returns n+1 points evenly spaced from a to b, both included.
// n below 1 is treated as 1.
func Interpolate(a, b domain.GeoPoint, n int) []domain.GeoPoint {
	if n < 1 {
		n = 1
	}
	out := make([]domain.GeoPoint, 0, n+1)
	out = append(out, a)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		out = append(out, domain.GeoPoint{
			Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
			Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
		})
	}
	// Exact endpoint, no accumulated float error.
	out = append(out, b)
	return out
}

const (
	baseSegments      = 10
	longRouteKm       = 100.0
	kmPerExtraSegment = 25.0
	maxSegments       = 100
)

// PolylineSegments returns how many segments a synthetic polyline of the given
// length gets: a fixed base up to 100 km, then one more per 25 km.
func PolylineSegments(distanceKm float64) int {
	if distanceKm <= longRouteKm || math.IsNaN(distanceKm) {
		return baseSegments
	}
	n := baseSegments + int(math.Ceil((distanceKm-longRouteKm)/kmPerExtraSegment))
	if n > maxSegments {
		return maxSegments
	}
	return n
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

// TravelMode selects the average speed used for travel time estimates.
type TravelMode string

const (
	ModeWalking         TravelMode = "walking"
	ModeBicycle         TravelMode = "bicycle"
	ModeCar             TravelMode = "car"
	ModePublicTransport TravelMode = "public_transport"
	ModeEmergency       TravelMode = "emergency"
)

var speedsKmh = map[TravelMode]float64{
	ModeWalking:         5,
	ModeBicycle:         15,
	ModeCar:             60,
	ModePublicTransport: 40,
	ModeEmergency:       80,
}

// SpeedKmh returns the average speed for mode. Unknown modes fall back to car.
func SpeedKmh(mode TravelMode) float64 {
	if v, ok := speedsKmh[mode]; ok {
		return v
	}
	return speedsKmh[ModeCar]
}

// EstimateTravelTime converts a distance into a duration at the mode's average speed.
func EstimateTravelTime(distanceKm float64, mode TravelMode) time.Duration {
	if distanceKm <= 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0
	}
	hours := distanceKm / SpeedKmh(mode)
	return time.Duration(hours * float64(time.Hour))
}

// FormatTravelTime renders d rounded to the minute as "1h 5m" or "25m".
func FormatTravelTime(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
