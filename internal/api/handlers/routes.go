package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"water-route-service/internal/api/dto"
	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

const (
	defaultMaxRoutes = 5
	defaultMaxHops   = 3
)

// RouteResolver is the resolution engine as seen by the HTTP layer.
type RouteResolver interface {
	Resolve(ctx context.Context, req domain.OptimizationRequest) (*domain.RouteResult, error)
}

type RouteHandler struct {
	Resolver RouteResolver
}

// Resolve finds the nearest usable water supply point for the posted origin.
// Any failure to produce a route is reported with one generic message; the
// attempt trail goes to the logs.
func (h *RouteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ResolveRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.Origin == nil || req.Origin.Latitude == nil || req.Origin.Longitude == nil {
		writeError(w, r, http.StatusBadRequest, "origin latitude and longitude are required")
		return
	}

	maxRoutes := req.MaxRoutes
	if maxRoutes == 0 {
		maxRoutes = defaultMaxRoutes
	}
	maxHops := req.MaxHops
	if maxHops == 0 {
		maxHops = defaultMaxHops
	}

	svcReq := domain.OptimizationRequest{
		AdminOrUserID:      req.AdminID,
		Origin:             domain.GeoPoint{Latitude: *req.Origin.Latitude, Longitude: *req.Origin.Longitude},
		MaxRoutes:          maxRoutes,
		MaxHops:            maxHops,
		DestinationKeyword: req.DestinationKeyword,
	}

	result, err := h.Resolver.Resolve(r.Context(), svcReq)
	if err != nil {
		reqID := obs.RequestID(r.Context())

		var invalid *domain.InvalidRequestError
		switch {
		case errors.As(err, &invalid):
			writeError(w, r, http.StatusBadRequest, invalid.Error())
		case errors.Is(err, domain.ErrAllStrategiesExhausted):
			log.Printf("req_id=%s resolve exhausted: %v", reqID, err)
			writeError(w, r, http.StatusServiceUnavailable, domain.UserMessage)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Printf("req_id=%s resolve abandoned: %v", reqID, err)
			writeError(w, r, http.StatusServiceUnavailable, domain.UserMessage)
		default:
			log.Printf("req_id=%s resolve failed: %v", reqID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, routeResponse(result))
}

func routeResponse(res *domain.RouteResult) dto.RouteResponse {
	out := dto.RouteResponse{
		RequestID:        res.RequestID,
		Method:           string(res.Method),
		Candidates:       make([]dto.CandidateResponse, 0, len(res.Candidates)),
		AttemptedMethods: make([]dto.AttemptResponse, 0, len(res.AttemptedMethods)),
		Probe: dto.ProbeResponse{
			Reachable:  res.Probe.Reachable,
			Endpoint:   res.Probe.Endpoint,
			Reason:     res.Probe.Reason,
			DurationMs: res.Probe.Duration.Milliseconds(),
		},
		CreatedAt: res.CreatedAt,
	}

	for _, c := range res.Candidates {
		line := make([][]float64, 0, len(c.Polyline))
		for _, p := range c.Polyline {
			line = append(line, p.CoordsToList())
		}
		out.Candidates = append(out.Candidates, dto.CandidateResponse{
			ID:           c.ID,
			Destination:  supplyPointResponse(c.Destination),
			DistanceKm:   c.DistanceKm,
			TravelTime:   c.TravelTime,
			Polyline:     line,
			IsShortest:   c.IsShortest,
			PriorityRank: c.PriorityRank,
			ColorTag:     c.ColorTag,
		})
	}

	for _, a := range res.AttemptedMethods {
		out.AttemptedMethods = append(out.AttemptedMethods, dto.AttemptResponse{
			Method:     string(a.Method),
			Outcome:    string(a.Outcome),
			Reason:     a.Reason,
			DurationMs: a.Duration.Milliseconds(),
		})
	}

	return out
}
