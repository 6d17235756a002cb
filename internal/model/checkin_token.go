package model

import "time"

// CheckinToken is an issued entry credential.  The raw token value is a
// high-entropy random string handed to the participant exactly once; only
// its SHA-256 hash is persisted.  A token transitions issued -> expired or
// issued -> consumed and never re-enters issued.  There is at most one row
// per reservation, so issuing a new token automatically supersedes any
// prior unconsumed one.
//
// Fields:
//
//	ID            – primary key identifier.
//	ReservationID – slot_participants.id this token is bound to (unique).
//	TokenHash     – SHA-256 hex digest of the raw token value (unique).
//	IssuedAt      – when the token was minted.
//	ExpiresAt     – absolute expiry; always IssuedAt + the process-wide TTL.
//	ConsumedAt    – set exactly once upon successful redemption.
//	ConsumedBy    – partner who redeemed the token.
type CheckinToken struct {
	ID            uint64     // checkin_tokens.id
	ReservationID string     // checkin_tokens.slot_participant_id
	TokenHash     string     // checkin_tokens.token_hash
	IssuedAt      time.Time  // checkin_tokens.issued_at
	ExpiresAt     time.Time  // checkin_tokens.expires_at
	ConsumedAt    *time.Time // checkin_tokens.consumed_at (nullable)
	ConsumedBy    *string    // checkin_tokens.consumed_by (nullable)
}

// Active reports whether the token can still be redeemed at the given
// instant: not yet consumed and not past its expiry.  Expiry is inclusive;
// a token presented at exactly ExpiresAt is already dead.
func (t CheckinToken) Active(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
