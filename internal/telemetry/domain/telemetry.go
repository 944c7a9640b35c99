package domain

import "time"

// Event source identifiers.
const (
	SourceAuth    = "auth"
	SourceSession = "session"
	SourceCatalog = "catalog"
)

// Event types emitted by the backend.
const (
	EventLogin          = "login"
	EventLoginFailure   = "login_failure"
	EventLogout         = "logout"
	EventDeviceAdmitted = "device_admitted"
	EventDeviceDenied   = "device_denied"
	EventDeviceEvicted  = "device_evicted"
	EventDeviceRemoved  = "device_removed"
	EventAdmitOnFault   = "device_admitted_on_fault"
)

// Event is one telemetry record shipped to the pipeline.
type Event struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId,omitempty"`
	DeviceID  string            `json:"deviceId,omitempty"`
	EventType string            `json:"eventType"`
	Source    string            `json:"source"`
	Detail    string            `json:"detail,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
