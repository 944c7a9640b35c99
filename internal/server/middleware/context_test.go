package middleware

import (
	"context"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "dev-a")

	if got, ok := GetUserID(ctx); !ok || got != "user-1" {
		t.Errorf("GetUserID = %q, %v", got, ok)
	}
	if got, ok := GetDeviceID(ctx); !ok || got != "dev-a" {
		t.Errorf("GetDeviceID = %q, %v", got, ok)
	}
}

func TestIdentityAbsent(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID should report absent")
	}
	if _, ok := GetDeviceID(ctx); ok {
		t.Error("GetDeviceID should report absent")
	}
	if GetRequestID(ctx) != "" {
		t.Error("GetRequestID should be empty")
	}
	if GetClientIP(ctx) != "" {
		t.Error("GetClientIP should be empty")
	}
}

func TestRequestIDAndClientIPRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithClientIP(ctx, "203.0.113.9")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID = %q", got)
	}
	if got := GetClientIP(ctx); got != "203.0.113.9" {
		t.Errorf("GetClientIP = %q", got)
	}
}
