package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

// SQLSupplyPointRepository is the Postgres mirror of the supply point dataset.
type SQLSupplyPointRepository struct {
	DB *sqlx.DB
}

// NewSQLSupplyPointRepository wraps a pgx-backed *sql.DB.
func NewSQLSupplyPointRepository(db *sql.DB) *SQLSupplyPointRepository {
	return &SQLSupplyPointRepository{DB: sqlx.NewDb(db, "pgx")}
}

func (s *SQLSupplyPointRepository) ListSupplyPoints(
	ctx context.Context,
	_ domain.GeoPoint,
	limit int,
) (_ []domain.SupplyPoint, err error) {
	defer obs.Time(ctx, "sql.ListSupplyPoints")(&err)

	if s.DB == nil {
		return nil, fmt.Errorf("sql supply point repository: %w", errNilDB)
	}

	q := `
	SELECT id, name, address, lat, lon, metadata::text AS metadata
	FROM supply_points
	ORDER BY id
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []supplyPointRow
	if err := s.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list supply points: query supply_points table: %w", err)
	}

	out := make([]domain.SupplyPoint, 0, len(rows))
	for _, r := range rows {
		sp, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list supply points: %w", err)
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *SQLSupplyPointRepository) UpsertSupplyPoints(ctx context.Context, points []domain.SupplyPoint) error {
	if s.DB == nil {
		return fmt.Errorf("sql supply point repository: %w", errNilDB)
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert supply points: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
	INSERT INTO supply_points (id, name, address, lat, lon, metadata, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, NOW())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		metadata = EXCLUDED.metadata,
		updated_at = NOW();
	`)
	if err != nil {
		return fmt.Errorf("upsert supply points: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("upsert supply points: empty id")
		}
		meta, err := metadataJSON(p.Metadata)
		if err != nil {
			return fmt.Errorf("upsert supply points: id=%s: encode metadata: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, p.Name, p.Address, p.Location.Latitude, p.Location.Longitude, meta); err != nil {
			return fmt.Errorf("upsert supply points id=%s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert supply points commit: %w", err)
	}
	return nil
}
