// Package handler exposes liveness and readiness probes.
package handler

import (
	"context"
	"net/http"
	"time"

	"medquiz-platform/backend/internal/server/httpx"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves /healthz and /readyz.
type Handler struct {
	db Pinger
}

// NewHandler returns a health handler. db may be nil; then readiness only
// reflects process liveness.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readyz reports whether the server can serve traffic, which requires the
// database to answer a ping.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "database unavailable"})
			return
		}
	}
	httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
