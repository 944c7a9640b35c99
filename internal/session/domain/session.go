package domain

import "time"

// DeviceSession is one device considered signed in for a user. A user has at
// most one row per device_id; the pair (UserID, DeviceID) identifies the row.
type DeviceSession struct {
	UserID     string
	DeviceID   string
	DeviceName string // e.g. "Windows PC"
	DeviceType string // mobile, tablet, desktop, unknown
	Browser    string
	OS         string
	UserAgent  string // raw string, for diagnostics
	CreatedAt  time.Time
	LastActive time.Time
}

// Label returns the user-facing name of the session's device,
// e.g. "Windows PC (Chrome)".
func (s *DeviceSession) Label() string {
	return s.DeviceName + " (" + s.Browser + ")"
}
