package domain

import "time"

// Method identifies which resolution strategy produced a result.
type Method string

const (
	MethodGenetic       Method = "GENETIC"
	MethodStandard      Method = "STANDARD"
	MethodNearestLookup Method = "NEAREST_LOOKUP"
	MethodLocalFallback Method = "LOCAL_FALLBACK"
)

// RemoteMethods lists the backend strategies in the order they are attempted.
var RemoteMethods = []Method{MethodGenetic, MethodStandard, MethodNearestLookup}

// Represents one scored, geometrically complete route to a single supply point.
// The polyline always starts at the request origin and ends at the destination.
type RouteCandidate struct {
	ID           string      `json:"id"`
	Destination  SupplyPoint `json:"destination"`
	DistanceKm   float64     `json:"distance_km"`
	TravelTime   string      `json:"travel_time"`
	Polyline     []GeoPoint  `json:"polyline"`
	IsShortest   bool        `json:"is_shortest"`
	PriorityRank int         `json:"priority_rank"`
	ColorTag     string      `json:"color_tag"`
}

// Represents the canonical answer to one resolution call.
// Candidates are ordered by ascending distance, and exactly one of them is
// flagged as the shortest. The caller owns the value once it is returned.
type RouteResult struct {
	RequestID        string           `json:"request_id"`
	Candidates       []RouteCandidate `json:"candidates"`
	Method           Method           `json:"method"`
	AttemptedMethods []Attempt        `json:"attempted_methods"`
	Probe            ProbeReport      `json:"probe"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Shortest returns the candidate flagged as shortest, or false when there is none.
func (r *RouteResult) Shortest() (RouteCandidate, bool) {
	for _, c := range r.Candidates {
		if c.IsShortest {
			return c, true
		}
	}
	return RouteCandidate{}, false
}
