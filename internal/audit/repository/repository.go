package repository

import (
	"context"

	"medquiz-platform/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	// ListByUser returns the most recent entries for a user, newest first,
	// up to limit.
	ListByUser(ctx context.Context, userID string, limit int32) ([]*domain.AuditLog, error)
}
