package model

import "time"

// Log action values.
const (
	LogActionTokenGenerated = "token_generated"
	LogActionScan           = "scan"
	LogActionValidate       = "validate"
	LogActionReject         = "reject"
)

// Log result values.  Every verify/validate outcome is recorded distinctly
// so staff tooling can audit why a scan was refused.
const (
	LogResultSuccess          = "success"
	LogResultInvalidToken     = "invalid_token"
	LogResultExpired          = "expired"
	LogResultNotFound         = "not_found"
	LogResultInvalidHost      = "invalid_host"
	LogResultInvalidWindow    = "invalid_window"
	LogResultAlreadyCheckedIn = "already_checked_in"
)

// CheckinLog is one append-only audit record of check-in activity.  Rows
// are written on a best-effort basis and never deleted; a failed insert
// must not abort the request being logged.
type CheckinLog struct {
	ID            uint64    // checkin_logs.id
	ReservationID *string   // checkin_logs.slot_participant_id (nullable)
	SlotID        *uint64   // checkin_logs.slot_id (nullable)
	ActivityID    *uint64   // checkin_logs.activity_id (nullable)
	Action        string    // checkin_logs.action
	Result        string    // checkin_logs.result
	PerformedBy   *string   // checkin_logs.performed_by (nullable)
	IPAddress     string    // checkin_logs.ip_address
	UserAgent     string    // checkin_logs.user_agent
	Metadata      string    // checkin_logs.metadata (JSON, may be empty)
	CreatedAt     time.Time // checkin_logs.created_at
}
