// Package queue defines the broker message payloads and the background
// consumer that listens to the checkin.validated queue and appends
// structured lines to logs/checkin.log.
package queue

// CheckinValidatedEvent is published when a staff scan successfully
// redeems a token.  It carries enough information for downstream consumers
// to log, notify, or feed attendance analytics without querying the
// primary database.
type CheckinValidatedEvent struct {
	ReservationID   string `json:"reservation_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	SlotID          uint64 `json:"slot_id"`
	ActivityID      uint64 `json:"activity_id"`
	ActivityName    string `json:"activity_name"`
	PartnerID       string `json:"partner_id"`
	CheckedInAt     string `json:"checked_in_at"`
}
