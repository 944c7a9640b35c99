package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medquiz-platform/backend/internal/telemetry/domain"
)

const emitTimeout = 5 * time.Second

// EmitAsync fills in the event's ID and CreatedAt if unset and ships it on a
// separate goroutine so request handling is never blocked by the pipeline.
// Failures are logged and dropped.
func EmitAsync(emitter EventEmitter, log *zap.Logger, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil && log != nil {
			log.Warn("telemetry: emit failed",
				zap.String("event_type", event.EventType),
				zap.String("source", event.Source),
				zap.Error(err))
		}
	}()
}
