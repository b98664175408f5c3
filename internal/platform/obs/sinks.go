package obs

import (
	"context"
	"log"

	"water-route-service/internal/domain"
	"water-route-service/internal/ports"
)

// LogSink writes one key=value log line per attempt event.
type LogSink struct{}

func (LogSink) RecordAttempt(_ context.Context, ev domain.AttemptEvent) {
	if ev.Reason != "" {
		log.Printf(
			"req_id=%s attempt method=%s outcome=%s dur=%dms reason=%q",
			ev.RequestID, ev.Method, ev.Outcome, ev.Duration.Milliseconds(), ev.Reason,
		)
		return
	}
	log.Printf(
		"req_id=%s attempt method=%s outcome=%s dur=%dms",
		ev.RequestID, ev.Method, ev.Outcome, ev.Duration.Milliseconds(),
	)
}

// MultiSink fans each event out to every non-nil sink, in order.
type MultiSink []ports.AttemptSink

func (m MultiSink) RecordAttempt(ctx context.Context, ev domain.AttemptEvent) {
	for _, s := range m {
		if s != nil {
			s.RecordAttempt(ctx, ev)
		}
	}
}
