package diagnostics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"water-route-service/internal/domain"
	"water-route-service/internal/platform/obs"
)

// SQLAttemptLog is the Postgres log of resolution attempts.
type SQLAttemptLog struct {
	DB *sql.DB
}

func NewSQLAttemptLog(db *sql.DB) *SQLAttemptLog {
	return &SQLAttemptLog{DB: db}
}

func (s *SQLAttemptLog) RecordAttempt(ctx context.Context, ev domain.AttemptEvent) {
	if err := s.insert(ctx, ev); err != nil {
		log.Printf("req_id=%s attempt log insert failed: %v", ev.RequestID, err)
	}
}

func (s *SQLAttemptLog) insert(ctx context.Context, ev domain.AttemptEvent) (err error) {
	defer obs.Time(ctx, "attempts.insert")(&err)

	if s.DB == nil {
		return errors.New("attempt log: db is nil")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO resolution_attempts (request_id, method, outcome, reason, duration_ms, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`,
		ev.RequestID,
		string(ev.Method),
		string(ev.Outcome),
		ev.Reason,
		ev.Duration.Milliseconds(),
		occurredAt(ev),
	)
	if err != nil {
		return fmt.Errorf("insert attempt method=%s: %w", ev.Method, err)
	}
	return nil
}
