package repository

import (
	"context"
	"time"

	"medquiz-platform/backend/internal/session/domain"
)

// Store is the view of device-session persistence inside one admission
// transaction. ListByUserForUpdate must take a per-user lock held until the
// transaction ends so concurrent admissions for the same user serialize, even
// when the user has no rows yet.
type Store interface {
	// ListByUserForUpdate locks the user and returns their sessions ordered
	// by last_active descending.
	ListByUserForUpdate(ctx context.Context, userID string) ([]*domain.DeviceSession, error)
	Create(ctx context.Context, s *domain.DeviceSession) error
	// Touch refreshes last_active to at. It never moves last_active backward.
	Touch(ctx context.Context, userID, deviceID string, at time.Time) error
	Delete(ctx context.Context, userID, deviceID string) error
}

// Repository defines persistence for device sessions.
type Repository interface {
	// ListByUser returns the user's sessions ordered by last_active descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.DeviceSession, error)
	// Delete removes the session row for (userID, deviceID). Deleting a row
	// that does not exist is not an error.
	Delete(ctx context.Context, userID, deviceID string) error
	// InTx runs fn inside a transaction. The admission read-count-then-write
	// sequence runs here so two concurrent logins cannot both take the last
	// free slot.
	InTx(ctx context.Context, fn func(Store) error) error
}
