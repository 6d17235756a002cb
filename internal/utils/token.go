package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for opaque tokens
	"encoding/hex"  // hex encoding of random bytes and digests
	"time"          // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for partner session tokens
)

// NewOpaqueToken returns a cryptographically secure random token string.
// Check-in tokens use 48 bytes of entropy (96 hex characters), which makes
// the value unguessable; only its hash is ever persisted.
func NewOpaqueToken() (string, error) {
	return randomHex(48)
}

// HashToken returns the SHA-256 hash of a raw token as a hex string.
// Storing only the hash means a leaked database cannot be replayed as
// live credentials.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// PartnerSession represents a signed staff session token along with its
// expiry.  The Token field contains the serialized JWT handed to the staff
// client; the hash of the same string is stored server-side for audit and
// revocation.
type PartnerSession struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewPartnerSessionToken builds and signs an HS256 JWT for a partner
// (business) account.  The claims carry the partner id as subject, a typ
// claim that pins the token to staff use, and standard exp/iat.
func NewPartnerSessionToken(secret, partnerID string, ttlHours int) (PartnerSession, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub": partnerID,
		"typ": "partner_session",
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return PartnerSession{}, err
	}
	return PartnerSession{Token: signed, Exp: exp}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
