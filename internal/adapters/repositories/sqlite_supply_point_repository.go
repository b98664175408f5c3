package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

// SQLite-backed local mirror of the supply point dataset.
type SqliteSupplyPointRepository struct{ DB *sql.DB }

func NewSqliteSupplyPointRepository(db *sql.DB) *SqliteSupplyPointRepository {
	return &SqliteSupplyPointRepository{DB: db}
}

// Return up to limit stored supply points ordered by id.
// near is ignored: the mirror holds a bounded dataset and the fallback ranks
// all of it.
func (s *SqliteSupplyPointRepository) ListSupplyPoints(
	ctx context.Context,
	_ domain.GeoPoint,
	limit int,
) (_ []domain.SupplyPoint, err error) {
	defer obs.Time(ctx, "sqlite.ListSupplyPoints")(&err)

	if s.DB == nil {
		return nil, fmt.Errorf("sqlite supply point repository: %w", errNilDB)
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
	SELECT
		id,
		name,
		address,
		lat,
		lon,
		metadata
	FROM supply_points
	ORDER BY id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list supply points: query supply_points table: %w", err)
	}
	defer rows.Close()

	points := make([]domain.SupplyPoint, 0, 64)
	for rows.Next() {
		var r supplyPointRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Lat, &r.Lon, &r.Metadata); err != nil {
			return nil, fmt.Errorf("list supply points: scan row: %w", err)
		}
		sp, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list supply points: %w", err)
		}
		points = append(points, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list supply points: row iteration: %w", err)
	}

	return points, nil
}

// Insert or replace the given supply points in one transaction.
func (s *SqliteSupplyPointRepository) UpsertSupplyPoints(ctx context.Context, points []domain.SupplyPoint) error {
	if s.DB == nil {
		return fmt.Errorf("sqlite supply point repository: %w", errNilDB)
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert supply points: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO supply_points (
		id,
		name,
		address,
		lat,
		lon,
		metadata,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'));
	`)
	if err != nil {
		return fmt.Errorf("upsert supply points: prepare insert: %w", err)
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
			return fmt.Errorf("upsert supply points: id=%s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert supply points: commit tx: %w", err)
	}

	return nil
}
