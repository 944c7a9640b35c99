package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medquiz-platform/backend/internal/session/domain"
)

const sessionColumns = "user_id, device_id, device_name, device_type, browser, os, user_agent, created_at, last_active"

// PostgresRepository persists device sessions in the device_sessions table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a device-session repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns all sessions for the user, most recently active first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.DeviceSession, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM device_sessions WHERE user_id = $1 ORDER BY last_active DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// Delete removes the session row for (userID, deviceID). Missing rows are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, userID, deviceID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM device_sessions WHERE user_id = $1 AND device_id = $2",
		userID, deviceID)
	return err
}

// InTx runs fn inside a database transaction, committing on nil and rolling
// back on error or panic.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(&txStore{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// txStore implements Store against one open transaction.
type txStore struct {
	tx *sql.Tx
}

// ListByUserForUpdate returns the user's rows, most recently active first,
// after taking a per-user advisory lock held until commit. Row locks alone do
// not serialize concurrent admissions: with zero rows there is nothing to
// lock, and READ COMMITTED never re-reads rows a blocking transaction
// inserted. The advisory lock is the serialization point.
func (s *txStore) ListByUserForUpdate(ctx context.Context, userID string) ([]*domain.DeviceSession, error) {
	if _, err := s.tx.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", userID); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM device_sessions WHERE user_id = $1 ORDER BY last_active DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (s *txStore) Create(ctx context.Context, d *domain.DeviceSession) error {
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO device_sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.UserID, d.DeviceID, d.DeviceName, d.DeviceType, d.Browser, d.OS, d.UserAgent,
		d.CreatedAt, d.LastActive)
	return err
}

// Touch refreshes last_active. GREATEST keeps it monotonic when app
// instances disagree on the clock.
func (s *txStore) Touch(ctx context.Context, userID, deviceID string, at time.Time) error {
	res, err := s.tx.ExecContext(ctx,
		"UPDATE device_sessions SET last_active = GREATEST(last_active, $3) WHERE user_id = $1 AND device_id = $2",
		userID, deviceID, at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("device session %s/%s not found", userID, deviceID)
	}
	return nil
}

func (s *txStore) Delete(ctx context.Context, userID, deviceID string) error {
	_, err := s.tx.ExecContext(ctx,
		"DELETE FROM device_sessions WHERE user_id = $1 AND device_id = $2",
		userID, deviceID)
	return err
}

func scanSessions(rows *sql.Rows) ([]*domain.DeviceSession, error) {
	var out []*domain.DeviceSession
	for rows.Next() {
		var d domain.DeviceSession
		if err := rows.Scan(&d.UserID, &d.DeviceID, &d.DeviceName, &d.DeviceType,
			&d.Browser, &d.OS, &d.UserAgent, &d.CreatedAt, &d.LastActive); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
