package repository

import (
	"context"
	"database/sql"
	"log"
)

// CheckinLogRepo appends audit rows to checkin_logs.  Writes are
// best-effort: a failed insert is logged and swallowed so an audit outage
// never blocks a check-in at the venue entrance.
type CheckinLogRepo struct {
	db *sql.DB
}

// NewCheckinLogRepo returns a CheckinLogRepo bound to the provided database.
func NewCheckinLogRepo(db *sql.DB) *CheckinLogRepo { return &CheckinLogRepo{db: db} }

// LogEntry carries the fields of one audit row.  Nil pointer fields are
// stored as NULL; scans of forged tokens have no reservation to reference.
type LogEntry struct {
	ReservationID *string
	SlotID        *uint64
	ActivityID    *uint64
	Action        string
	Result        string
	PerformedBy   *string
	IPAddress     string
	UserAgent     string
	Metadata      string // JSON document, may be empty
}

// Record inserts one audit row.  Errors are logged, never returned.
func (r *CheckinLogRepo) Record(ctx context.Context, e LogEntry) {
	const q = `INSERT INTO checkin_logs
	           (slot_participant_id, slot_id, activity_id, action, result, performed_by, ip_address, user_agent, metadata)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))`
	_, err := r.db.ExecContext(ctx, q,
		e.ReservationID, e.SlotID, e.ActivityID, e.Action, e.Result,
		e.PerformedBy, e.IPAddress, e.UserAgent, e.Metadata)
	if err != nil {
		log.Printf("checkin-log: insert failed (action=%s result=%s): %v", e.Action, e.Result, err)
	}
}
