package security

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
)

func TestGenerateDevKey(t *testing.T) {
	key, err := GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	if _, ok := key.Public().(*ecdsa.PublicKey); !ok {
		t.Fatalf("dev key should be ECDSA, got %T", key.Public())
	}
	if alg := KeyAlg(key.Public()); alg != "ES256" {
		t.Errorf("KeyAlg = %q, want ES256", alg)
	}
}

func TestParsePrivateKey_RoundTrip(t *testing.T) {
	key, err := GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalPKCS8PrivateKey: %v", err)
	}
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	parsed, err := ParsePrivateKey(pemStr)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if _, ok := parsed.Public().(*ecdsa.PublicKey); !ok {
		t.Errorf("parsed key should be ECDSA, got %T", parsed.Public())
	}
}

func TestParsePublicKey_RoundTrip(t *testing.T) {
	key, err := GenerateDevKey()
	if err != nil {
		t.Fatalf("GenerateDevKey: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(key.Public())
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey: %v", err)
	}
	pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	pub, err := ParsePublicKey(pemStr)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if KeyAlg(pub) != "ES256" {
		t.Errorf("KeyAlg = %q, want ES256", KeyAlg(pub))
	}
}

func TestParseKeys_Invalid(t *testing.T) {
	if _, err := ParsePrivateKey(""); err == nil {
		t.Error("empty private key should fail")
	}
	if _, err := ParsePrivateKey("-----BEGIN GARBAGE-----\nZm9v\n-----END GARBAGE-----"); err == nil {
		t.Error("unknown PEM type should fail")
	}
	if _, err := ParsePublicKey("not pem at all"); err == nil {
		t.Error("non-PEM public key should fail")
	}
}
