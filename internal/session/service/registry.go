// Package service implements the device session registry: the admission policy
// that limits how many devices a user can be signed in on at once.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"medquiz-platform/backend/internal/audit"
	"medquiz-platform/backend/internal/deviceident"
	"medquiz-platform/backend/internal/session/domain"
	"medquiz-platform/backend/internal/session/repository"
	"medquiz-platform/backend/internal/telemetry"
	telemetrydomain "medquiz-platform/backend/internal/telemetry/domain"
)

// Decision is the outcome of a device admission attempt.
type Decision int

const (
	// DecisionAdmitted means the device holds a session slot.
	DecisionAdmitted Decision = iota
	// DecisionDenied means the user is at the device limit and every other
	// device is recently active.
	DecisionDenied
	// DecisionAdmittedOnFault means the session store failed and the device
	// was let through rather than locking the user out.
	DecisionAdmittedOnFault
)

// String returns the decision name for logs and telemetry.
func (d Decision) String() string {
	switch d {
	case DecisionAdmitted:
		return "admitted"
	case DecisionDenied:
		return "denied"
	case DecisionAdmittedOnFault:
		return "admitted_on_fault"
	default:
		return "unknown"
	}
}

// Admission is the result of Register.
type Admission struct {
	Decision Decision
	// Message is user-facing text set on denial.
	Message string
	// EvictedDeviceID is set when a stale device was signed out to make room.
	EvictedDeviceID string
	// ActiveDevices lists the user's current device labels, e.g. "Windows PC (Chrome)".
	ActiveDevices []string
}

// Registry enforces the per-user concurrent device limit.
type Registry struct {
	repo       repository.Repository
	maxDevices int
	staleAfter time.Duration
	auditLog   audit.AuditLogger
	emitter    telemetry.EventEmitter
	log        *zap.Logger

	now func() time.Time
}

// NewRegistry returns a Registry backed by repo. maxDevices is the concurrent
// device cap per user; staleAfter is how long a device may be inactive before
// it can be evicted to make room. auditLog and emitter may be nil.
func NewRegistry(repo repository.Repository, maxDevices int, staleAfter time.Duration, auditLog audit.AuditLogger, emitter telemetry.EventEmitter, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		repo:       repo,
		maxDevices: maxDevices,
		staleAfter: staleAfter,
		auditLog:   auditLog,
		emitter:    emitter,
		log:        log,
		now:        time.Now,
	}
}

// Register runs the admission policy for (userID, deviceID) at sign-in or
// session refresh. The whole read-count-write sequence runs in one store
// transaction that starts by locking the user (see Store.ListByUserForUpdate),
// so two concurrent logins for the same user cannot both take the last free
// slot.
//
// Outcomes, checked in order inside the transaction:
//   - the device already holds a slot: its last_active is refreshed;
//   - the user is under the limit: a new session row is created;
//   - the least recently active device has been idle longer than staleAfter:
//     its row is deleted and the new device's row is created in the same
//     transaction;
//   - otherwise the attempt is denied with a message listing the active
//     device labels.
//
// A store failure never locks the user out: Register logs the error and
// returns DecisionAdmittedOnFault.
func (r *Registry) Register(ctx context.Context, userID, deviceID string, info deviceident.Info) *Admission {
	result := &Admission{Decision: DecisionAdmitted}
	now := r.now().UTC()

	err := r.repo.InTx(ctx, func(store repository.Store) error {
		sessions, err := store.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		for _, s := range sessions {
			if s.DeviceID == deviceID {
				if err := store.Touch(ctx, userID, deviceID, now); err != nil {
					return err
				}
				if now.After(s.LastActive) {
					s.LastActive = now
				}
				result.ActiveDevices = labels(sessions)
				return nil
			}
		}

		if len(sessions) < r.maxDevices {
			created := &domain.DeviceSession{
				UserID:     userID,
				DeviceID:   deviceID,
				DeviceName: info.Name,
				DeviceType: info.Type,
				Browser:    info.Browser,
				OS:         info.OS,
				UserAgent:  info.UserAgent,
				CreatedAt:  now,
				LastActive: now,
			}
			if err := store.Create(ctx, created); err != nil {
				return err
			}
			result.ActiveDevices = labels(append(sessions, created))
			return nil
		}

		oldest := sessions[0]
		for _, s := range sessions[1:] {
			if s.LastActive.Before(oldest.LastActive) {
				oldest = s
			}
		}
		if now.Sub(oldest.LastActive) > r.staleAfter {
			if err := store.Delete(ctx, userID, oldest.DeviceID); err != nil {
				return err
			}
			created := &domain.DeviceSession{
				UserID:     userID,
				DeviceID:   deviceID,
				DeviceName: info.Name,
				DeviceType: info.Type,
				Browser:    info.Browser,
				OS:         info.OS,
				UserAgent:  info.UserAgent,
				CreatedAt:  now,
				LastActive: now,
			}
			if err := store.Create(ctx, created); err != nil {
				return err
			}
			result.EvictedDeviceID = oldest.DeviceID
			remaining := make([]*domain.DeviceSession, 0, len(sessions))
			for _, s := range sessions {
				if s.DeviceID != oldest.DeviceID {
					remaining = append(remaining, s)
				}
			}
			result.ActiveDevices = labels(append(remaining, created))
			return nil
		}

		result.Decision = DecisionDenied
		result.ActiveDevices = labels(sessions)
		result.Message = fmt.Sprintf(
			"You have reached the maximum of %d devices. Currently signed in on: %s. Please sign out from one device to continue.",
			r.maxDevices, strings.Join(result.ActiveDevices, ", "))
		return nil
	})
	if err != nil {
		r.log.Error("session: admission store failure, admitting device",
			zap.String("user_id", userID),
			zap.String("device_id", deviceID),
			zap.Error(err))
		result = &Admission{Decision: DecisionAdmittedOnFault}
		r.recordOutcome(ctx, userID, deviceID, result)
		return result
	}

	r.recordOutcome(ctx, userID, deviceID, result)
	return result
}

// Devices returns the user's device sessions ordered by last activity, most
// recent first. A store failure yields an empty list, not an error: the
// devices page degrades instead of breaking.
func (r *Registry) Devices(ctx context.Context, userID string) []*domain.DeviceSession {
	sessions, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		r.log.Error("session: list devices failed",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return sessions
}

// Remove signs the device out by deleting its session row. Used by logout.
func (r *Registry) Remove(ctx context.Context, userID, deviceID string) error {
	if err := r.repo.Delete(ctx, userID, deviceID); err != nil {
		return err
	}
	r.audit(ctx, userID, "device.removed", "device:"+deviceID, "")
	r.emit(ctx, userID, deviceID, telemetrydomain.EventDeviceRemoved, nil)
	return nil
}

// ForceSignOut removes another of the user's devices from the devices page so
// a new device can sign in.
func (r *Registry) ForceSignOut(ctx context.Context, userID, deviceID string) error {
	if err := r.repo.Delete(ctx, userID, deviceID); err != nil {
		return err
	}
	r.audit(ctx, userID, "device.force_signout", "device:"+deviceID, "")
	r.emit(ctx, userID, deviceID, telemetrydomain.EventDeviceRemoved, map[string]string{"forced": "true"})
	return nil
}

func (r *Registry) recordOutcome(ctx context.Context, userID, deviceID string, result *Admission) {
	switch result.Decision {
	case DecisionAdmitted:
		r.audit(ctx, userID, "device.admitted", "device:"+deviceID, "")
		r.emit(ctx, userID, deviceID, telemetrydomain.EventDeviceAdmitted, nil)
		if result.EvictedDeviceID != "" {
			r.audit(ctx, userID, "device.evicted", "device:"+result.EvictedDeviceID, "")
			r.emit(ctx, userID, result.EvictedDeviceID, telemetrydomain.EventDeviceEvicted,
				map[string]string{"evicted_by": deviceID})
		}
	case DecisionDenied:
		r.audit(ctx, userID, "device.denied", "device:"+deviceID, "")
		r.emit(ctx, userID, deviceID, telemetrydomain.EventDeviceDenied, nil)
	case DecisionAdmittedOnFault:
		r.emit(ctx, userID, deviceID, telemetrydomain.EventAdmitOnFault, nil)
	}
}

func (r *Registry) audit(ctx context.Context, userID, action, resource, metadata string) {
	if r.auditLog == nil {
		return
	}
	r.auditLog.LogEvent(ctx, userID, action, resource, metadata)
}

func (r *Registry) emit(ctx context.Context, userID, deviceID, eventType string, extra map[string]string) {
	if r.emitter == nil {
		return
	}
	telemetry.EmitAsync(r.emitter, r.log, &telemetrydomain.Event{
		UserID:    userID,
		DeviceID:  deviceID,
		EventType: eventType,
		Source:    telemetrydomain.SourceSession,
		Labels:    extra,
	})
}

func labels(sessions []*domain.DeviceSession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Label())
	}
	return out
}
