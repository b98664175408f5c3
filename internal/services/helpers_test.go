package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"water-route-service/internal/domain"
)

var testOrigin = domain.GeoPoint{Latitude: 1.0, Longitude: 103.8}

func testRequest() domain.OptimizationRequest {
	return domain.OptimizationRequest{
		AdminOrUserID: "admin-1",
		Origin:        testOrigin,
		MaxRoutes:     5,
		MaxHops:       3,
	}
}

// pointNorthKm returns a point km kilometres due north of origin.
func pointNorthKm(origin domain.GeoPoint, km float64) domain.GeoPoint {
	const kmPerDegree = 6371.0 * math.Pi / 180
	return domain.GeoPoint{Latitude: origin.Latitude + km/kmPerDegree, Longitude: origin.Longitude}
}

type fakeStrategy struct {
	method domain.Method
	body   []byte
	err    error
	calls  int
}

func (f *fakeStrategy) Method() domain.Method { return f.method }

func (f *fakeStrategy) Fetch(ctx context.Context, _ domain.OptimizationRequest) ([]byte, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.body, f.err
}

type staticSource struct {
	points []domain.SupplyPoint
	err    error
	calls  int
}

func (s *staticSource) ListSupplyPoints(_ context.Context, _ domain.GeoPoint, limit int) ([]domain.SupplyPoint, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.points) > limit {
		return s.points[:limit], nil
	}
	return s.points, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AttemptEvent
}

func (s *recordingSink) RecordAttempt(_ context.Context, ev domain.AttemptEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

type recordingArchive struct {
	trails []*domain.AllStrategiesExhaustedError
}

func (a *recordingArchive) Archive(_ context.Context, trail *domain.AllStrategiesExhaustedError) error {
	a.trails = append(a.trails, trail)
	return nil
}

// checkRanked asserts the ordering, rank, shortest flag and polyline
// anchoring invariants on a candidate list.
func checkRanked(t *testing.T, origin domain.GeoPoint, cands []domain.RouteCandidate) {
	t.Helper()

	if len(cands) == 0 {
		t.Fatalf("expected candidates, got none")
	}

	shortest := 0
	for i, c := range cands {
		if c.PriorityRank != i+1 {
			t.Fatalf("candidate %d rank = %d, want %d", i, c.PriorityRank, i+1)
		}
		if i > 0 && c.DistanceKm < cands[i-1].DistanceKm {
			t.Fatalf("candidate %d distance %.3f < previous %.3f", i, c.DistanceKm, cands[i-1].DistanceKm)
		}
		if c.IsShortest {
			shortest++
			if i != 0 {
				t.Fatalf("candidate %d flagged shortest", i)
			}
		}
		if len(c.Polyline) < 2 {
			t.Fatalf("candidate %d polyline has %d points", i, len(c.Polyline))
		}
		if !closeTo(c.Polyline[0], origin) {
			t.Fatalf("candidate %d polyline starts at %+v, want %+v", i, c.Polyline[0], origin)
		}
		if last := c.Polyline[len(c.Polyline)-1]; !closeTo(last, c.Destination.Location) {
			t.Fatalf("candidate %d polyline ends at %+v, want %+v", i, last, c.Destination.Location)
		}
	}
	if shortest != 1 {
		t.Fatalf("shortest flagged on %d candidates, want 1", shortest)
	}
}

func closeTo(a, b domain.GeoPoint) bool {
	return math.Abs(a.Latitude-b.Latitude) <= 1e-6 && math.Abs(a.Longitude-b.Longitude) <= 1e-6
}
