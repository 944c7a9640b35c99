package security

import (
	"testing"
	"time"
)

func newTestProvider(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenProvider {
	t.Helper()
	key, err := GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	return NewTokenProvider(key, key.Public(), "medquiz-auth", "medquiz-api", accessTTL, refreshTTL)
}

func TestIssueAndValidateAccess(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute, time.Hour)

	token, jti, expiresAt, err := p.IssueAccess("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" || jti == "" {
		t.Fatal("token and jti must be non-empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiresAt should be in the future")
	}

	userID, deviceID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
	if deviceID != "device-1" {
		t.Errorf("deviceID = %q, want device-1", deviceID)
	}
}

func TestIssueAndValidateRefresh(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute, time.Hour)

	token, wantJTI, _, err := p.IssueRefresh("user-2", "device-2")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	userID, deviceID, jti, err := p.ValidateRefresh(token)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if userID != "user-2" || deviceID != "device-2" {
		t.Errorf("got (%q, %q), want (user-2, device-2)", userID, deviceID)
	}
	if jti != wantJTI {
		t.Errorf("jti = %q, want %q", jti, wantJTI)
	}
}

func TestValidateAccess_WrongIssuer(t *testing.T) {
	key, err := GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	issuing := NewTokenProvider(key, key.Public(), "someone-else", "medquiz-api", time.Minute, time.Hour)
	validating := NewTokenProvider(key, key.Public(), "medquiz-auth", "medquiz-api", time.Minute, time.Hour)

	token, _, _, err := issuing.IssueAccess("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := validating.ValidateAccess(token); err == nil {
		t.Error("token with wrong issuer should be rejected")
	}
}

func TestValidateAccess_WrongKey(t *testing.T) {
	p1 := newTestProvider(t, time.Minute, time.Hour)
	p2 := newTestProvider(t, time.Minute, time.Hour)

	token, _, _, err := p1.IssueAccess("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := p2.ValidateAccess(token); err == nil {
		t.Error("token signed by a different key should be rejected")
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute, time.Hour)

	token, _, _, err := p.IssueAccess("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := p.ValidateAccess(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestValidateAccess_Garbage(t *testing.T) {
	p := newTestProvider(t, time.Minute, time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, _, err := p.ValidateAccess(tok); err == nil {
			t.Errorf("ValidateAccess(%q) should fail", tok)
		}
	}
}

func TestAccessRefreshNotInterchangeable(t *testing.T) {
	p := newTestProvider(t, time.Minute, time.Hour)

	access, _, _, err := p.IssueAccess("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := p.ValidateRefresh(access); err == nil {
		t.Error("ValidateRefresh should reject an access token")
	}

	refresh, _, _, err := p.IssueRefresh("user-1", "device-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, _, err := p.ValidateAccess(refresh); err == nil {
		t.Error("ValidateAccess should reject a refresh token")
	}
}
