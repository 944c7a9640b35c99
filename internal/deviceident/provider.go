// Package deviceident names the calling device: a stable per-browser
// identifier and a human-readable classification of its user agent.
package deviceident

import (
	"net/http"

	"github.com/google/uuid"
)

// DefaultCookieName is the cookie that persists the device identifier.
const DefaultCookieName = "mq_device_id"

// defaultCookieMaxAge keeps the identifier stable across visits for a year.
const defaultCookieMaxAge = 365 * 24 * 60 * 60

// Provider yields the stable identifier for the device making the request.
// The identifier names a browser installation; it is not a security credential.
type Provider interface {
	DeviceID(w http.ResponseWriter, r *http.Request) string
}

// CookieProvider persists a generated UUID in a long-lived cookie. A request
// that already carries the cookie gets the same value back; a request without
// one gets a fresh UUID and a Set-Cookie on the response.
type CookieProvider struct {
	CookieName string
	MaxAge     int
	Secure     bool
}

// NewCookieProvider returns a CookieProvider with default cookie name and max age.
func NewCookieProvider(secure bool) *CookieProvider {
	return &CookieProvider{CookieName: DefaultCookieName, MaxAge: defaultCookieMaxAge, Secure: secure}
}

// DeviceID returns the device identifier from the request cookie, generating
// and setting one when absent.
func (p *CookieProvider) DeviceID(w http.ResponseWriter, r *http.Request) string {
	name := p.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   p.maxAge(),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (p *CookieProvider) maxAge() int {
	if p.MaxAge > 0 {
		return p.MaxAge
	}
	return defaultCookieMaxAge
}

// StaticProvider always returns the same identifier. For tests.
type StaticProvider string

// DeviceID returns the fixed identifier.
func (p StaticProvider) DeviceID(http.ResponseWriter, *http.Request) string {
	return string(p)
}
