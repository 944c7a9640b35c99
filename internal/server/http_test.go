package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"medquiz-platform/backend/internal/deviceident"
	identityhandler "medquiz-platform/backend/internal/identity/handler"
	identityservice "medquiz-platform/backend/internal/identity/service"
	"medquiz-platform/backend/internal/security"
	sessiondomain "medquiz-platform/backend/internal/session/domain"
	sessionservice "medquiz-platform/backend/internal/session/service"
	userdomain "medquiz-platform/backend/internal/user/domain"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

type fakeSessions struct{}

func (fakeSessions) Register(ctx context.Context, userID, deviceID string, info deviceident.Info) *sessionservice.Admission {
	return &sessionservice.Admission{Decision: sessionservice.DecisionAdmitted}
}

func (fakeSessions) Devices(ctx context.Context, userID string) []*sessiondomain.DeviceSession {
	return nil
}

func (fakeSessions) Remove(ctx context.Context, userID, deviceID string) error      { return nil }
func (fakeSessions) ForceSignOut(ctx context.Context, userID, deviceID string) error { return nil }

func newTestServer(t *testing.T) (http.Handler, *security.TokenProvider) {
	t.Helper()
	key, err := security.GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	tokens := security.NewTokenProvider(key, key.Public(), "medquiz", "medquiz-api", time.Hour, 24*time.Hour)
	auth := identityservice.NewAuthService(
		&memUserRepo{users: map[string]*userdomain.User{}},
		fakeSessions{}, nil, security.NewHasher(4), tokens)

	router := NewRouter(Deps{
		Auth:     identityhandler.NewHandler(auth, deviceident.StaticProvider("dev-a")),
		Sessions: fakeSessions{},
		Tokens:   tokens,
		Log:      zap.NewNop(),
	})
	return router, tokens
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rec.Code)
	}
}

func TestRouter_AuthIsPublic(t *testing.T) {
	router, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/v1/register",
		strings.NewReader(`{"email":"jo@example.com","password":"sekret123","name":"Jo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SessionsRequireAuth(t *testing.T) {
	router, tokens := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/v1/devices", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: %d, want 401", rec.Code)
	}

	token, _, _, err := tokens.IssueAccess("user-1", "dev-a")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/sessions/v1/devices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token: %d, want 200", rec.Code)
	}
}

func TestRouter_CatalogNotMountedWithoutRepo(t *testing.T) {
	router, tokens := newTestServer(t)
	token, _, _, err := tokens.IssueAccess("user-1", "dev-a")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/catalog/v1/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("catalog without repo = %d, want 404", rec.Code)
	}
}
