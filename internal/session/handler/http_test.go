package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"medquiz-platform/backend/internal/server/middleware"
	"medquiz-platform/backend/internal/session/domain"
)

type fakeRegistry struct {
	devices   []*domain.DeviceSession
	removed   [][2]string
	forced    [][2]string
	removeErr error
}

func (f *fakeRegistry) Devices(ctx context.Context, userID string) []*domain.DeviceSession {
	return f.devices
}

func (f *fakeRegistry) Remove(ctx context.Context, userID, deviceID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, [2]string{userID, deviceID})
	return nil
}

func (f *fakeRegistry) ForceSignOut(ctx context.Context, userID, deviceID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.forced = append(f.forced, [2]string{userID, deviceID})
	return nil
}

func newTestRouter(reg *fakeRegistry) http.Handler {
	r := chi.NewRouter()
	r.Route("/sessions/v1", NewHandler(reg).Routes)
	return r
}

func doAuthed(t *testing.T, h http.Handler, method, target, userID, deviceID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if userID != "" {
		req = req.WithContext(middleware.WithIdentity(req.Context(), userID, deviceID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListDevices(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	reg := &fakeRegistry{devices: []*domain.DeviceSession{
		{
			UserID: "user-1", DeviceID: "dev-b", DeviceName: "iOS Device",
			DeviceType: "mobile", Browser: "Safari", OS: "iOS",
			CreatedAt: now.Add(-time.Hour), LastActive: now,
		},
		{
			UserID: "user-1", DeviceID: "dev-a", DeviceName: "Windows PC",
			DeviceType: "desktop", Browser: "Chrome", OS: "Windows",
			CreatedAt: now.Add(-48 * time.Hour), LastActive: now.Add(-2 * time.Hour),
		},
	}}
	h := newTestRouter(reg)

	rec := doAuthed(t, h, http.MethodGet, "/sessions/v1/devices", "user-1", "dev-a")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Devices []struct {
			DeviceID string `json:"deviceId"`
			Label    string `json:"label"`
			Current  bool   `json:"current"`
		} `json:"devices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(resp.Devices))
	}
	if resp.Devices[0].Label != "iOS Device (Safari)" {
		t.Errorf("label = %q", resp.Devices[0].Label)
	}
	if resp.Devices[0].Current {
		t.Error("dev-b should not be marked current")
	}
	if !resp.Devices[1].Current {
		t.Error("dev-a should be marked current")
	}
}

func TestListDevices_Empty(t *testing.T) {
	h := newTestRouter(&fakeRegistry{})

	rec := doAuthed(t, h, http.MethodGet, "/sessions/v1/devices", "user-1", "dev-a")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Devices []any `json:"devices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Devices == nil {
		t.Error("devices should encode as [], not null")
	}
}

func TestListDevices_NoIdentity(t *testing.T) {
	h := newTestRouter(&fakeRegistry{})
	rec := doAuthed(t, h, http.MethodGet, "/sessions/v1/devices", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRemoveDevice(t *testing.T) {
	reg := &fakeRegistry{}
	h := newTestRouter(reg)

	rec := doAuthed(t, h, http.MethodDelete, "/sessions/v1/devices/dev-b", "user-1", "dev-a")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(reg.forced) != 1 || reg.forced[0] != [2]string{"user-1", "dev-b"} {
		t.Errorf("forced = %v", reg.forced)
	}
}

func TestRemoveDevice_RegistryError(t *testing.T) {
	reg := &fakeRegistry{removeErr: errors.New("store down")}
	h := newTestRouter(reg)

	rec := doAuthed(t, h, http.MethodDelete, "/sessions/v1/devices/dev-b", "user-1", "dev-a")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRemoveCurrentDevice(t *testing.T) {
	reg := &fakeRegistry{}
	h := newTestRouter(reg)

	rec := doAuthed(t, h, http.MethodDelete, "/sessions/v1/devices", "user-1", "dev-a")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(reg.removed) != 1 || reg.removed[0] != [2]string{"user-1", "dev-a"} {
		t.Errorf("removed = %v", reg.removed)
	}
}
