package ports

import (
	"context"

	"water-route-service/internal/domain"
)

// Port: a boundary for retrieving the fallback supply-point dataset.
type SupplyPointSource interface {
	// Return up to limit supply points. near is a hint for sources that can
	// query spatially; others ignore it.
	ListSupplyPoints(ctx context.Context, near domain.GeoPoint, limit int) ([]domain.SupplyPoint, error)
}
