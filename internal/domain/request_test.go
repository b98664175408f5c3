package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestOptimizationRequestValidate(t *testing.T) {
	valid := OptimizationRequest{
		AdminOrUserID: "admin-1",
		Origin:        GeoPoint{Latitude: 1.3521, Longitude: 103.8198},
		MaxRoutes:     5,
		MaxHops:       3,
	}

	tests := []struct {
		name  string
		mut   func(r *OptimizationRequest)
		field string
	}{
		{"valid", func(r *OptimizationRequest) {}, ""},
		{"latitude out of range", func(r *OptimizationRequest) { r.Origin.Latitude = 91 }, "origin"},
		{"longitude out of range", func(r *OptimizationRequest) { r.Origin.Longitude = -180.5 }, "origin"},
		{"nan latitude", func(r *OptimizationRequest) { r.Origin.Latitude = math.NaN() }, "origin"},
		{"zero max routes", func(r *OptimizationRequest) { r.MaxRoutes = 0 }, "max_routes"},
		{"negative max hops", func(r *OptimizationRequest) { r.MaxHops = -1 }, "max_hops"},
		{"long keyword", func(r *OptimizationRequest) { r.DestinationKeyword = strings.Repeat("x", 201) }, "destination_keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)

			err := req.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var invalid *InvalidRequestError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidRequestError, got %v", err)
			}
			if invalid.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, invalid.Field)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected errors.Is(err, ErrInvalidRequest)")
			}
		})
	}
}

func TestGeoPointZeroIsValidButMissing(t *testing.T) {
	p := GeoPoint{}
	if !p.Valid() {
		t.Fatalf("(0, 0) is inside coordinate ranges")
	}
	if !p.IsZero() {
		t.Fatalf("expected IsZero for (0, 0)")
	}
}

func TestExhaustedErrorListsTrail(t *testing.T) {
	err := &AllStrategiesExhaustedError{
		RequestID: "req-1",
		Attempts: []Attempt{
			{Method: MethodGenetic, Outcome: OutcomeTimeout},
			{Method: MethodLocalFallback, Outcome: OutcomeNoData},
		},
	}

	want := "all strategies exhausted: req_id=req-1 attempts=[GENETIC=timeout LOCAL_FALLBACK=no_data]"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, ErrAllStrategiesExhausted) {
		t.Fatalf("expected errors.Is(err, ErrAllStrategiesExhausted)")
	}
}

func TestResultShortest(t *testing.T) {
	r := &RouteResult{Candidates: []RouteCandidate{{ID: "a"}, {ID: "b", IsShortest: true}}}
	c, ok := r.Shortest()
	if !ok || c.ID != "b" {
		t.Fatalf("expected candidate b, got %+v ok=%v", c, ok)
	}

	if _, ok := (&RouteResult{}).Shortest(); ok {
		t.Fatalf("expected no shortest candidate on empty result")
	}
}
