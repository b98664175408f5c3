package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"water-route-service/internal/domain"
)

// supplyPointRow is the stored shape shared by the SQLite and Postgres mirrors.
type supplyPointRow struct {
	ID       string         `db:"id"`
	Name     string         `db:"name"`
	Address  string         `db:"address"`
	Lat      float64        `db:"lat"`
	Lon      float64        `db:"lon"`
	Metadata sql.NullString `db:"metadata"`
}

func (r supplyPointRow) toDomain() (domain.SupplyPoint, error) {
	sp := domain.SupplyPoint{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Location: domain.GeoPoint{Latitude: r.Lat, Longitude: r.Lon},
	}
	if sp.Name == "" {
		sp.Name = domain.DefaultSupplyPointName
	}
	if sp.Address == "" {
		sp.Address = domain.DefaultAddress
	}
	if r.Metadata.Valid && r.Metadata.String != "" {
		if err := json.Unmarshal([]byte(r.Metadata.String), &sp.Metadata); err != nil {
			return domain.SupplyPoint{}, fmt.Errorf("supply point id=%s: decode metadata: %w", r.ID, err)
		}
	}
	return sp, nil
}

func metadataJSON(meta map[string]string) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
