// Package server assembles the chi router from the feature handlers and the
// middleware chain.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	coursehandler "medquiz-platform/backend/internal/course/handler"
	courserepo "medquiz-platform/backend/internal/course/repository"
	healthhandler "medquiz-platform/backend/internal/health/handler"
	identityhandler "medquiz-platform/backend/internal/identity/handler"
	"medquiz-platform/backend/internal/security"
	"medquiz-platform/backend/internal/server/middleware"
	sessionhandler "medquiz-platform/backend/internal/session/handler"
)

// Deps holds the handler dependencies for the HTTP router.
type Deps struct {
	// Auth is the register/login/refresh/logout handler. Required.
	Auth *identityhandler.Handler
	// Sessions is the signed-in devices handler. Required.
	Sessions sessionhandler.SessionRegistry
	// CatalogRepo backs the course catalog routes. If nil, catalog routes are not mounted.
	CatalogRepo courserepo.Repository
	// Tokens validates Bearer tokens on protected routes. Required.
	Tokens *security.TokenProvider
	// HealthPinger is used by /readyz (e.g. *sql.DB). May be nil.
	HealthPinger healthhandler.Pinger
	// Log is used by the request log and recovery middleware.
	Log *zap.Logger
}

// NewRouter builds the full route tree.
//
// Route → handler mapping:
//   - /auth/v1/*       → internal/identity/handler (public)
//   - /sessions/v1/*   → internal/session/handler (Bearer)
//   - /catalog/v1/*    → internal/course/handler (Bearer)
//   - /healthz,/readyz → internal/health/handler (public)
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))

	health := healthhandler.NewHandler(deps.HealthPinger)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/auth/v1", deps.Auth.Routes)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Auth(deps.Tokens))
		protected.Route("/sessions/v1", sessionhandler.NewHandler(deps.Sessions).Routes)
		if deps.CatalogRepo != nil {
			protected.Route("/catalog/v1", coursehandler.NewHandler(deps.CatalogRepo).Routes)
		}
	})

	return r
}
