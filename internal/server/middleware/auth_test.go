package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medquiz-platform/backend/internal/security"
)

func newTestTokens(t *testing.T) *security.TokenProvider {
	t.Helper()
	key, err := security.GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	return security.NewTokenProvider(key, key.Public(), "medquiz", "medquiz-api", time.Hour, 24*time.Hour)
}

func authedHandler(t *testing.T, gotUser, gotDevice *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := GetUserID(r.Context())
		d, _ := GetDeviceID(r.Context())
		*gotUser, *gotDevice = u, d
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := newTestTokens(t)
	token, _, _, err := tokens.IssueAccess("user-1", "dev-a")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	var gotUser, gotDevice string
	h := Auth(tokens)(authedHandler(t, &gotUser, &gotDevice))

	req := httptest.NewRequest(http.MethodGet, "/sessions/v1/devices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "user-1" || gotDevice != "dev-a" {
		t.Errorf("identity = (%q, %q), want (user-1, dev-a)", gotUser, gotDevice)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	tokens := newTestTokens(t)
	var gotUser, gotDevice string
	h := Auth(tokens)(authedHandler(t, &gotUser, &gotDevice))

	req := httptest.NewRequest(http.MethodGet, "/sessions/v1/devices", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	tokens := newTestTokens(t)
	for _, header := range []string{"Bearer", "Basic abc", "garbage"} {
		var gotUser, gotDevice string
		h := Auth(tokens)(authedHandler(t, &gotUser, &gotDevice))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuth_GarbageToken(t *testing.T) {
	tokens := newTestTokens(t)
	var gotUser, gotDevice string
	h := Auth(tokens)(authedHandler(t, &gotUser, &gotDevice))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen == "" {
		t.Fatal("request id should be generated")
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Errorf("response header = %q, context = %q", got, seen)
	}
}

func TestRequestID_HonorsIncoming(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "upstream-7" {
		t.Errorf("request id = %q, want upstream-7", seen)
	}
}

func TestRequestID_ClientIPFromForwardedFor(t *testing.T) {
	var ip string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = GetClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ip != "198.51.100.4" {
		t.Errorf("client ip = %q, want first forwarded address", ip)
	}
}
