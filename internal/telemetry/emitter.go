// Package telemetry ships backend events to the telemetry pipeline.
package telemetry

import (
	"context"

	"medquiz-platform/backend/internal/telemetry/domain"
)

// EventEmitter sends one telemetry event to the pipeline.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
	Close() error
}

// NopEmitter drops all events. Used when no pipeline is configured.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, event *domain.Event) error { return nil }
func (NopEmitter) Close() error                                       { return nil }
