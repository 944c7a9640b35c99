package domain

import "time"

// AuditLog is one recorded auth or session event.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string // e.g. "device.admitted", "auth.login_failure"
	Resource  string // e.g. "device:<device_id>", "user:<user_id>"
	IP        string
	Metadata  string // free-form, usually JSON
	CreatedAt time.Time
}
