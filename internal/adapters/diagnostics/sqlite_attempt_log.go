package diagnostics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"water-route-service/internal/domain"
)

// SQLite backed log of resolution attempts, one row per attempt event.
type SqliteAttemptLog struct {
	DB *sql.DB
}

func NewSqliteAttemptLog(db *sql.DB) *SqliteAttemptLog {
	return &SqliteAttemptLog{DB: db}
}

// RecordAttempt stores ev. Failures are logged, never returned.
func (s *SqliteAttemptLog) RecordAttempt(ctx context.Context, ev domain.AttemptEvent) {
	if err := s.insert(ctx, ev); err != nil {
		log.Printf("req_id=%s attempt log insert failed: %v", ev.RequestID, err)
	}
}

func (s *SqliteAttemptLog) insert(ctx context.Context, ev domain.AttemptEvent) error {
	if s.DB == nil {
		return errors.New("attempt log: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO resolution_attempts (
		request_id,
		method,
		outcome,
		reason,
		duration_ms,
		occurred_at
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`,
		ev.RequestID,
		string(ev.Method),
		string(ev.Outcome),
		ev.Reason,
		ev.Duration.Milliseconds(),
		occurredAt(ev).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt method=%s: %w", ev.Method, err)
	}
	return nil
}

// Attempts returns the stored events of one request in insertion order.
func (s *SqliteAttemptLog) Attempts(ctx context.Context, requestID string) ([]domain.AttemptEvent, error) {
	if s.DB == nil {
		return nil, errors.New("attempt log: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		method,
		outcome,
		reason,
		duration_ms,
		occurred_at
	FROM resolution_attempts
	WHERE request_id = ?
	ORDER BY id;
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: query resolution_attempts table: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptEvent
	for rows.Next() {
		var (
			method, outcome, reason, at string
			ms                          int64
		)
		if err := rows.Scan(&method, &outcome, &reason, &ms, &at); err != nil {
			return nil, fmt.Errorf("list attempts: scan row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("list attempts: parse occurred_at %q: %w", at, err)
		}
		out = append(out, domain.AttemptEvent{
			RequestID:  requestID,
			Method:     domain.Method(method),
			Outcome:    domain.Outcome(outcome),
			Reason:     reason,
			Duration:   time.Duration(ms) * time.Millisecond,
			OccurredAt: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: row iteration: %w", err)
	}

	return out, nil
}

func occurredAt(ev domain.AttemptEvent) time.Time {
	if ev.OccurredAt.IsZero() {
		return time.Now().UTC()
	}
	return ev.OccurredAt.UTC()
}
