// Package handler exposes the device session registry over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medquiz-platform/backend/internal/server/httpx"
	"medquiz-platform/backend/internal/server/middleware"
	"medquiz-platform/backend/internal/session/domain"
)

// SessionRegistry is the part of the registry service the handler needs.
type SessionRegistry interface {
	Devices(ctx context.Context, userID string) []*domain.DeviceSession
	Remove(ctx context.Context, userID, deviceID string) error
	ForceSignOut(ctx context.Context, userID, deviceID string) error
}

// Handler serves the signed-in devices API.
type Handler struct {
	registry SessionRegistry
}

// NewHandler returns a session handler backed by registry.
func NewHandler(registry SessionRegistry) *Handler {
	return &Handler{registry: registry}
}

// Routes mounts the device session endpoints. All routes require the auth
// middleware to have set the caller's identity in context.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/devices", h.listDevices)
	r.Delete("/devices", h.removeCurrentDevice)
	r.Delete("/devices/{deviceID}", h.removeDevice)
}

type deviceResponse struct {
	DeviceID   string    `json:"deviceId"`
	Label      string    `json:"label"`
	DeviceName string    `json:"deviceName"`
	DeviceType string    `json:"deviceType"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	Current    bool      `json:"current"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

type listDevicesResponse struct {
	Devices []deviceResponse `json:"devices"`
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing identity")
		return
	}
	currentDevice, _ := middleware.GetDeviceID(r.Context())

	sessions := h.registry.Devices(r.Context(), userID)
	resp := listDevicesResponse{Devices: make([]deviceResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Devices = append(resp.Devices, deviceResponse{
			DeviceID:   s.DeviceID,
			Label:      s.Label(),
			DeviceName: s.DeviceName,
			DeviceType: s.DeviceType,
			Browser:    s.Browser,
			OS:         s.OS,
			Current:    s.DeviceID == currentDevice,
			CreatedAt:  s.CreatedAt,
			LastActive: s.LastActive,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// removeDevice signs out another of the caller's devices, freeing a slot.
func (h *Handler) removeDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing identity")
		return
	}
	deviceID := chi.URLParam(r, "deviceID")
	if deviceID == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "device id is required")
		return
	}
	if err := h.registry.ForceSignOut(r.Context(), userID, deviceID); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "could not sign out device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removeCurrentDevice signs out the device making the request.
func (h *Handler) removeCurrentDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing identity")
		return
	}
	deviceID, ok := middleware.GetDeviceID(r.Context())
	if !ok || deviceID == "" {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "no device bound to this session")
		return
	}
	if err := h.registry.Remove(r.Context(), userID, deviceID); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal", "could not sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
