package domain

import "strings"

// OptimizationRequest is built by the caller and read-only to the resolver.
type OptimizationRequest struct {
	AdminOrUserID      string   `json:"admin_id"`
	Origin             GeoPoint `json:"origin"`
	MaxRoutes          int      `json:"max_routes"`
	MaxHops            int      `json:"max_hops"`
	DestinationKeyword string   `json:"destination_keyword"`
}

// Validate checks the request before any I/O is attempted.
func (r OptimizationRequest) Validate() error {
	if !r.Origin.Valid() {
		return &InvalidRequestError{Field: "origin", Reason: "coordinates out of range"}
	}
	if r.MaxRoutes <= 0 {
		return &InvalidRequestError{Field: "max_routes", Reason: "must be greater than zero"}
	}
	if r.MaxHops <= 0 {
		return &InvalidRequestError{Field: "max_hops", Reason: "must be greater than zero"}
	}
	if len(strings.TrimSpace(r.DestinationKeyword)) > 200 {
		return &InvalidRequestError{Field: "destination_keyword", Reason: "must be at most 200 characters"}
	}
	return nil
}
