package ports

import (
	"context"

	"water-route-service/internal/domain"
)

// AttemptSink receives one structured event per probe and strategy attempt.
// Sinks must not block resolution; failures are theirs to log.
type AttemptSink interface {
	RecordAttempt(ctx context.Context, ev domain.AttemptEvent)
}

// TrailArchive stores the attempt trail of resolutions that found no route.
type TrailArchive interface {
	Archive(ctx context.Context, trail *domain.AllStrategiesExhaustedError) error
}
