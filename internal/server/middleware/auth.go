package middleware

import (
	"net/http"
	"strings"

	"medquiz-platform/backend/internal/security"
	"medquiz-platform/backend/internal/server/httpx"
)

const bearerPrefix = "bearer "

// Auth returns middleware that validates the Bearer (access) token from the
// Authorization header and sets user_id and device_id in context. Requests
// without a valid token get 401.
func Auth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid authorization")
				return
			}
			userID, deviceID, err := tokens.ValidateAccess(token)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid authorization")
				return
			}
			ctx := WithIdentity(r.Context(), userID, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the Bearer token from the request, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
