// Package lockout throttles repeated failed logins per email using Redis.
package lockout

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store counts failed login attempts per email in a rolling window and
// reports when the account is temporarily locked. All operations are
// fail-open: if Redis is unreachable, logins proceed unthrottled.
type Store struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	log         *zap.Logger
}

// NewStore returns a lockout store talking to Redis at addr. If addr is
// empty, the store is disabled and never locks anyone out.
func NewStore(addr string, maxAttempts int, window time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	var client *redis.Client
	if addr != "" {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}
	return &Store{client: client, maxAttempts: maxAttempts, window: window, log: log}
}

func key(email string) string { return "lockout:" + email }

// Locked reports whether the email has exceeded the allowed failed attempts.
func (s *Store) Locked(ctx context.Context, email string) bool {
	if s == nil || s.client == nil {
		return false
	}
	n, err := s.client.Get(ctx, key(email)).Int()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("lockout: redis get failed", zap.Error(err))
		}
		return false
	}
	return n >= s.maxAttempts
}

// RecordFailure counts one failed login attempt. The window is fixed: the
// counter expires one window after the first failure, so later failures do
// not extend the lockout (EXPIRE NX only sets a TTL where none exists).
func (s *Store) RecordFailure(ctx context.Context, email string) {
	if s == nil || s.client == nil {
		return
	}
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key(email))
	pipe.ExpireNX(ctx, key(email), s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("lockout: redis incr failed", zap.Error(err))
	}
}

// Reset clears the failure counter after a successful login.
func (s *Store) Reset(ctx context.Context, email string) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Del(ctx, key(email)).Err(); err != nil {
		s.log.Warn("lockout: redis del failed", zap.Error(err))
	}
}

// Close releases the Redis connection. Safe to call on a disabled store.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
