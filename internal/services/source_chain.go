package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
	"water-route-service/internal/ports"
)

// SourceChain tries each supply point source in order and returns the first
// dataset holding at least one usable point. Errors, empty lists and lists
// of unusable coordinates move on to the next source.
//
// Every source gets its own Timeout derived from the caller's context, so a
// hanging source cannot starve the ones after it. The chain only stops early
// when the caller's context is done.
type SourceChain struct {
	Sources []ports.SupplyPointSource
	Timeout time.Duration // per source; zero means DefaultDatasetTimeout
}

func (c SourceChain) ListSupplyPoints(ctx context.Context, near domain.GeoPoint, limit int) ([]domain.SupplyPoint, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultDatasetTimeout
	}

	var errs []error
	for i, src := range c.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		points, err := listWithin(ctx, src, near, limit, timeout)
		if err != nil {
			log.Printf("req_id=%s supply source %d (%T) failed: %v", obs.RequestID(ctx), i, src, err)
			errs = append(errs, fmt.Errorf("source %d: %w", i, err))
			continue
		}
		if hasUsablePoint(points) {
			return points, nil
		}
		if len(points) > 0 {
			log.Printf("req_id=%s supply source %d (%T) returned %d points, none usable", obs.RequestID(ctx), i, src, len(points))
		}
	}

	if len(errs) == len(c.Sources) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	// At least one source answered, just with nothing usable.
	return nil, nil
}

func listWithin(ctx context.Context, src ports.SupplyPointSource, near domain.GeoPoint, limit int, timeout time.Duration) ([]domain.SupplyPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.ListSupplyPoints(ctx, near, limit)
}

// hasUsablePoint applies the same filter as the local ranking.
func hasUsablePoint(points []domain.SupplyPoint) bool {
	for _, sp := range points {
		if usableLocation(sp.Location) {
			return true
		}
	}
	return false
}

func usableLocation(p domain.GeoPoint) bool {
	return p.Valid() && !p.IsZero()
}
