package ports

import (
	"context"

	"water-route-service/internal/domain"
)

// Strategy is one remote optimizer endpoint attempted by the resolver.
// Fetch returns the raw response body of a 2xx response; decoding is left to
// the normalizer so each backend schema is handled in one place.
type Strategy interface {
	Method() domain.Method
	Fetch(ctx context.Context, req domain.OptimizationRequest) ([]byte, error)
}

// Prober performs the advisory connectivity check.
// Implementations never fail; problems are reported through the returned report.
type Prober interface {
	Probe(ctx context.Context) domain.ProbeReport
}
