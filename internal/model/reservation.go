package model

import "time"

// Reservation represents one participant's claim to attend one scheduled
// slot of an activity (a slot_participants row).  The check-in subsystem
// only reads reservations and writes the checked-in flag upon redemption;
// the rows themselves are owned by the booking side of the platform.
//
// Fields:
//
//	ID           – slot_participants.id (UUID).
//	UserID       – participant who owns the claim (UUID).
//	SlotID       – scheduled slot being attended.
//	ActivityID   – activity the slot belongs to.
//	CheckedInAt  – when the participant was checked in (nil until redeemed).
//	CheckedInBy  – partner who performed the check-in (nil until redeemed).
type Reservation struct {
	ID          string     // slot_participants.id
	UserID      string     // slot_participants.user_id
	SlotID      uint64     // slot_participants.slot_id
	ActivityID  uint64     // slot_participants.activity_id
	CheckedInAt *time.Time // slot_participants.checked_in_at (nullable)
	CheckedInBy *string    // slot_participants.checked_in_by (nullable)
}

// Slot describes one scheduled occurrence of an activity.  Timestamps are
// stored in UTC; the check-in window is derived from them.
type Slot struct {
	ID              uint64    // activity_slots.id
	ActivityID      uint64    // activity_slots.activity_id
	StartsAt        time.Time // activity_slots.starts_at
	EndsAt          time.Time // activity_slots.ends_at
	MaxParticipants uint32    // activity_slots.max_participants
}

// Activity is the event a slot belongs to.  HostID identifies the business
// profile that runs the activity; only that partner may redeem tokens for
// its reservations.
type Activity struct {
	ID      uint64 // activities.id
	Name    string // activities.name
	HostID  string // activities.host_id (UUID of a business profile)
	Address string // activities.address
	City    string // activities.city
}

// ReservationDetail aggregates a reservation with its slot, activity and
// participant profile.  It is what the staff-facing verify endpoint shows
// before a redemption is confirmed.
type ReservationDetail struct {
	Reservation Reservation
	Slot        Slot
	Activity    Activity
	Participant Profile
}
