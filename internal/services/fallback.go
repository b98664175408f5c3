package services

import (
	"context"
	"fmt"
	"time"

	"water-route-service/internal/domain"
	"water-route-service/internal/geo"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
)

const (
	DefaultDatasetLimit   = 1000
	DefaultDatasetTimeout = 15 * time.Second
)

// ComputeLocally ranks every supply point in dataset by great-circle
// distance from origin. There is no distance cutoff: a sparse region still
// gets its closest available point. The maxRoutes cap is applied after the
// full sort.
//
// Points outside the coordinate ranges or at exactly (0, 0) are skipped.
// Returns domain.ErrNoData when nothing usable is left.
func ComputeLocally(origin domain.GeoPoint, dataset []domain.SupplyPoint, maxRoutes int) ([]domain.RouteCandidate, error) {
	return computeLocally(origin, dataset, maxRoutes, geo.ModeCar)
}

func computeLocally(origin domain.GeoPoint, dataset []domain.SupplyPoint, maxRoutes int, mode geo.TravelMode) ([]domain.RouteCandidate, error) {
	if !origin.Valid() {
		return nil, &domain.InvalidRequestError{Field: "origin", Reason: "out of range"}
	}

	cands := make([]domain.RouteCandidate, 0, len(dataset))
	for _, sp := range dataset {
		if !usableLocation(sp.Location) {
			continue
		}

		km := geo.Haversine(origin, sp.Location)
		cands = append(cands, domain.RouteCandidate{
			ID:          "local-" + sp.ID,
			Destination: sp,
			DistanceKm:  km,
			TravelTime:  geo.FormatTravelTime(geo.EstimateTravelTime(km, mode)),
			Polyline:    geo.Interpolate(origin, sp.Location, geo.PolylineSegments(km)),
		})
	}

	if len(cands) == 0 {
		return nil, fmt.Errorf("local fallback: %d points in dataset: %w", len(dataset), domain.ErrNoData)
	}
	return rankCandidates(cands, maxRoutes), nil
}

// LocalFallback fetches the dataset for a single resolution and ranks it.
// Nothing is cached between calls.
//
// Timeout bounds the dataset read. When Source is a SourceChain it bounds
// each source of the chain instead, unless the chain sets its own.
type LocalFallback struct {
	Source  ports.SupplyPointSource
	Limit   int
	Timeout time.Duration
	Mode    geo.TravelMode
}

func (f *LocalFallback) Compute(ctx context.Context, req domain.OptimizationRequest) (_ []domain.RouteCandidate, err error) {
	defer obs.Time(ctx, "fallback.Compute")(&err)

	if f.Source == nil {
		return nil, fmt.Errorf("local fallback: no supply point source: %w", domain.ErrNoData)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultDatasetLimit
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultDatasetTimeout
	}
	mode := f.Mode
	if mode == "" {
		mode = geo.ModeCar
	}

	var dataset []domain.SupplyPoint
	if chain, ok := f.Source.(SourceChain); ok {
		if chain.Timeout <= 0 {
			chain.Timeout = timeout
		}
		dataset, err = chain.ListSupplyPoints(ctx, req.Origin, limit)
	} else {
		dataset, err = listWithin(ctx, f.Source, req.Origin, limit, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("local fallback: list supply points: %w", err)
	}
	return computeLocally(req.Origin, dataset, req.MaxRoutes, mode)
}
