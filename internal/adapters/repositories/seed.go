package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"water-route-service/internal/domain"
)

// SupplyPointWriter is implemented by the local dataset mirrors.
type SupplyPointWriter interface {
	UpsertSupplyPoints(ctx context.Context, points []domain.SupplyPoint) error
}

type SupplyPointSeed struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Metadata  map[string]string `json:"metadata"`
}

// Populate the mirror with supply point data from a JSON file.
func SeedFromJSON(ctx context.Context, w SupplyPointWriter, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed supply points: read %q: %w", jsonPath, err)
	}

	var data []SupplyPointSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed supply points: parse json: %w", err)
	}

	points := make([]domain.SupplyPoint, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed supply points: item at index %d: id cannot be empty", i+1)
		}

		loc := domain.GeoPoint{Latitude: item.Latitude, Longitude: item.Longitude}
		if !loc.Valid() || loc.IsZero() {
			return fmt.Errorf("seed supply points: id=%s: invalid coordinates %v,%v", id, item.Latitude, item.Longitude)
		}

		points = append(points, domain.SupplyPoint{
			ID:       id,
			Name:     strings.TrimSpace(item.Name),
			Address:  strings.TrimSpace(item.Address),
			Location: loc,
			Metadata: item.Metadata,
		})
	}

	if err := w.UpsertSupplyPoints(ctx, points); err != nil {
		return fmt.Errorf("seed supply points: %w", err)
	}
	return nil
}
