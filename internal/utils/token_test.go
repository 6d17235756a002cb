package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewOpaqueToken(t *testing.T) {
	t.Parallel()
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if len(a) != 96 {
		t.Fatalf("token length = %d, want 96 hex chars", len(a))
	}
	b, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if a == b {
		t.Fatal("two tokens must not collide")
	}
}

func TestHashToken(t *testing.T) {
	t.Parallel()
	h := HashToken("abc")
	if len(h) != 64 {
		t.Fatalf("hash length = %d, want 64", len(h))
	}
	if h != HashToken("abc") {
		t.Fatal("hash must be deterministic")
	}
	if h == HashToken("abd") {
		t.Fatal("different inputs must not share a hash")
	}
}

func TestNewPartnerSessionToken(t *testing.T) {
	t.Parallel()
	const secret = "test-secret"
	s, err := NewPartnerSessionToken(secret, "partner-1", 12)
	if err != nil {
		t.Fatalf("NewPartnerSessionToken: %v", err)
	}
	if until := time.Until(s.Exp); until < 11*time.Hour || until > 13*time.Hour {
		t.Fatalf("expiry %v not ~12h out", s.Exp)
	}

	parsed, err := jwt.Parse(s.Token, func(tok *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "partner-1" {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["typ"] != "partner_session" {
		t.Fatalf("typ = %v", claims["typ"])
	}

	if _, err := jwt.Parse(s.Token, func(tok *jwt.Token) (any, error) {
		return []byte("wrong-secret"), nil
	}); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret!") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "not-it") {
		t.Fatal("wrong password accepted")
	}
}
