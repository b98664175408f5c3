package services

import (
	"bytes"
	"encoding/json"
	"math"
)

// Wire shapes of the three optimizer strategies. Each strategy gets its own
// envelope type and decoder; they only share the lenient building blocks
// below (locations, distances, polylines).

type geneticEnvelope struct {
	Success *bool          `json:"success"`
	Routes  []geneticRoute `json:"routes"`
}

type geneticRoute struct {
	wireDistance
	DestinationPoint *wireLocation `json:"destination_point"`
	FitnessScore     *float64      `json:"fitness_score"`
	Polyline         wirePolyline  `json:"polyline"`
}

type advancedEnvelope struct {
	Success *bool           `json:"success"`
	Routes  []advancedRoute `json:"routes"`
}

type advancedRoute struct {
	wireDistance
	Points   []wireLocation    `json:"points"`
	Segments []advancedSegment `json:"segments"`
}

type advancedSegment struct {
	From     *wireLocation `json:"from"`
	To       *wireLocation `json:"to"`
	Distance *float64      `json:"distance"`
	Mode     string        `json:"mode"`
	Polyline wirePolyline  `json:"polyline"`
}

type nearestEnvelope struct {
	Success       *bool              `json:"success"`
	NearestPoints []wireNearestPoint `json:"nearest_points"`
}

type wireNearestPoint struct {
	Location wireLocation
	Distance wireDistance
}

func (p *wireNearestPoint) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &p.Location); err != nil {
		return err
	}
	return json.Unmarshal(b, &p.Distance)
}

// wireDistance accepts any of the distance field names the backends use.
// Values are kilometres.
type wireDistance struct {
	TotalDistance *float64 `json:"total_distance"`
	Distance      *float64 `json:"distance"`
	DistanceKm    *float64 `json:"distance_km"`
}

func (d wireDistance) km() (float64, bool) {
	for _, v := range []*float64{d.TotalDistance, d.Distance, d.DistanceKm} {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0 {
			return *v, true
		}
	}
	return 0, false
}

// wireLocation decodes {lat,lng}, {lat,lon}, {latitude,longitude} objects
// and [lat,lng] pairs.
type wireLocation struct {
	Lat, Lng   *float64
	Name       string
	Address    string
	StreetName string
}

type wireLocationObject struct {
	Lat        *float64 `json:"lat"`
	Latitude   *float64 `json:"latitude"`
	Lng        *float64 `json:"lng"`
	Lon        *float64 `json:"lon"`
	Longitude  *float64 `json:"longitude"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	StreetName string   `json:"street_name"`
}

func (l *wireLocation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(b, &pair); err != nil {
			return err
		}
		if len(pair) >= 2 {
			l.Lat, l.Lng = &pair[0], &pair[1]
		}
		return nil
	}

	var o wireLocationObject
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	l.Lat = firstFloat(o.Latitude, o.Lat)
	l.Lng = firstFloat(o.Longitude, o.Lng, o.Lon)
	l.Name = o.Name
	l.Address = o.Address
	l.StreetName = o.StreetName
	return nil
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// wirePolyline is a list of locations. Any other JSON shape (an encoded
// polyline string, an object) is treated as absent rather than as an error.
type wirePolyline []wireLocation

func (p *wirePolyline) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*p = nil
		return nil
	}
	var locs []wireLocation
	if err := json.Unmarshal(b, &locs); err != nil {
		return err
	}
	*p = locs
	return nil
}
