package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
)

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type optimizeRequest struct {
	AdminID            string   `json:"admin_id"`
	CurrentLocation    location `json:"current_location"`
	DestinationKeyword string   `json:"destination_keyword"`
	MaxRoutes          int      `json:"max_routes"`
	MaxHops            int      `json:"max_hops"`
	OptimizationMethod string   `json:"optimization_method,omitempty"`
}

type nearestRequest struct {
	CurrentLocation location `json:"current_location"`
	MaxPoints       int      `json:"max_points"`
	MaxDistance     float64  `json:"max_distance"`
}

var strategyPaths = map[domain.Method]string{
	domain.MethodGenetic:       "/optimize-route-genetic",
	domain.MethodStandard:      "/optimize-route-advanced",
	domain.MethodNearestLookup: "/find-nearest-points",
}

// Strategies returns the remote strategies in resolver priority order.
func (c *Client) Strategies() []ports.Strategy {
	out := make([]ports.Strategy, 0, len(domain.RemoteMethods))
	for _, m := range domain.RemoteMethods {
		out = append(out, &strategy{client: c, method: m, path: strategyPaths[m]})
	}
	return out
}

type strategy struct {
	client *Client
	method domain.Method
	path   string
}

func (s *strategy) Method() domain.Method { return s.method }

// Fetch posts the method-specific body and returns the raw 2xx payload.
// Strategy calls are not retried: a failed attempt moves the resolver on.
func (s *strategy) Fetch(ctx context.Context, req domain.OptimizationRequest) (_ []byte, err error) {
	defer obs.Time(ctx, "optimizer."+string(s.method))(&err)

	body, err := s.client.requestBody(s.method, req)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", s.method, err)
	}

	httpReq, err := s.client.newRequest(ctx, http.MethodPost, s.client.baseURL+s.path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.method, err)
	}

	payload, err := s.client.do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", s.method, err)
	}

	return payload, nil
}

func (c *Client) requestBody(m domain.Method, req domain.OptimizationRequest) ([]byte, error) {
	loc := location{Latitude: req.Origin.Latitude, Longitude: req.Origin.Longitude}

	switch m {
	case domain.MethodGenetic:
		return json.Marshal(optimizeRequest{
			AdminID:            req.AdminOrUserID,
			CurrentLocation:    loc,
			DestinationKeyword: req.DestinationKeyword,
			MaxRoutes:          req.MaxRoutes,
			MaxHops:            req.MaxHops,
			OptimizationMethod: "genetic",
		})
	case domain.MethodStandard:
		return json.Marshal(optimizeRequest{
			AdminID:            req.AdminOrUserID,
			CurrentLocation:    loc,
			DestinationKeyword: req.DestinationKeyword,
			MaxRoutes:          req.MaxRoutes,
			MaxHops:            req.MaxHops,
		})
	case domain.MethodNearestLookup:
		return json.Marshal(nearestRequest{
			CurrentLocation: loc,
			MaxPoints:       req.MaxRoutes,
			MaxDistance:     c.maxDistanceKm,
		})
	default:
		return nil, fmt.Errorf("no remote endpoint for method %q", m)
	}
}
