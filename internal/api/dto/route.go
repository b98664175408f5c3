package dto

import "time"

type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ResolveRequest struct {
	AdminID            string           `json:"admin_id"`
	Origin             *LocationRequest `json:"origin"`
	MaxRoutes          int              `json:"max_routes"`
	MaxHops            int              `json:"max_hops"`
	DestinationKeyword string           `json:"destination_keyword"`
}

type SupplyPointResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type CandidateResponse struct {
	ID           string              `json:"id"`
	Destination  SupplyPointResponse `json:"destination"`
	DistanceKm   float64             `json:"distance_km"`
	TravelTime   string              `json:"travel_time"`
	Polyline     [][]float64         `json:"polyline"`
	IsShortest   bool                `json:"is_shortest"`
	PriorityRank int                 `json:"priority_rank"`
	ColorTag     string              `json:"color_tag"`
}

type AttemptResponse struct {
	Method     string `json:"method"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type ProbeResponse struct {
	Reachable  bool   `json:"reachable"`
	Endpoint   string `json:"endpoint,omitempty"`
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type RouteResponse struct {
	RequestID        string              `json:"request_id"`
	Method           string              `json:"method"`
	Candidates       []CandidateResponse `json:"candidates"`
	AttemptedMethods []AttemptResponse   `json:"attempted_methods"`
	Probe            ProbeResponse       `json:"probe"`
	CreatedAt        time.Time           `json:"created_at"`
}

type ListSupplyPointsResponse struct {
	SupplyPoints []SupplyPointResponse `json:"supply_points"`
}
