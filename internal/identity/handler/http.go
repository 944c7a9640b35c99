// Package handler exposes register, login, refresh, and logout over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medquiz-platform/backend/internal/deviceident"
	"medquiz-platform/backend/internal/identity/service"
	"medquiz-platform/backend/internal/server/httpx"
)

// Handler serves the auth API. The device identity provider binds each
// browser to a stable device id before the admission policy runs.
type Handler struct {
	auth    *service.AuthService
	devices deviceident.Provider
}

// NewHandler returns an auth handler.
func NewHandler(auth *service.AuthService, devices deviceident.Provider) *Handler {
	return &Handler{auth: auth, devices: devices}
}

// Routes mounts the auth endpoints. All are public.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/refresh", h.refresh)
	r.Post("/logout", h.logout)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken     string       `json:"accessToken"`
	RefreshToken    string       `json:"refreshToken"`
	ExpiresAt       time.Time    `json:"expiresAt"`
	User            userResponse `json:"user"`
	EvictedDeviceID string       `json:"evictedDeviceId,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type deviceLimitResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ActiveDevices []string `json:"activeDevices"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			httpx.Error(w, http.StatusConflict, "email_exists", err.Error())
			return
		}
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, userResponse{UserID: res.UserID, Email: res.Email, Name: res.Name})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	deviceID := h.devices.DeviceID(w, r)
	info := deviceident.Classify(r.UserAgent())

	res, err := h.auth.Login(r.Context(), req.Email, req.Password, deviceID, info)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:     res.AccessToken,
		RefreshToken:    res.RefreshToken,
		ExpiresAt:       res.ExpiresAt,
		User:            userResponse{UserID: res.UserID, Email: res.Email, Name: res.Name},
		EvictedDeviceID: res.EvictedDeviceID,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	info := deviceident.Classify(r.UserAgent())

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken, info)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:     res.AccessToken,
		RefreshToken:    res.RefreshToken,
		ExpiresAt:       res.ExpiresAt,
		User:            userResponse{UserID: res.UserID, Email: res.Email, Name: res.Name},
		EvictedDeviceID: res.EvictedDeviceID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			httpx.Error(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "internal", "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	var limitErr *service.DeviceLimitError
	switch {
	case errors.As(err, &limitErr):
		var resp deviceLimitResponse
		resp.Error.Code = "device_limit_reached"
		resp.Error.Message = limitErr.Message
		resp.ActiveDevices = limitErr.ActiveDevices
		httpx.JSON(w, http.StatusConflict, resp)
	case errors.Is(err, service.ErrAccountLocked):
		httpx.Error(w, http.StatusTooManyRequests, "account_locked", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefreshToken):
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal", "authentication failed")
	}
}
