// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// check-in service and handlers to distinguish between different failure
// scenarios without inspecting SQL driver errors directly.
package repository

import "errors"

// ErrReservationNotFound is returned when no slot_participants row exists
// for the requested identifier.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTokenNotFound is returned when no check-in token matches the
// presented hash.
var ErrTokenNotFound = errors.New("checkin token not found")

// ErrTokenConsumed is returned when the conditional consume update affects
// no rows: another redemption won the race or the token died between the
// pre-checks and the update. At most one redemption ever succeeds.
var ErrTokenConsumed = errors.New("checkin token already consumed")

// ErrProfileNotFound is returned when a profile lookup matches no row,
// including lookups filtered to business accounts.
var ErrProfileNotFound = errors.New("profile not found")

// ErrSlotNotFound is returned when an activity slot lookup matches no row.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSessionInvalid is returned when a partner session token hash is
// unknown, revoked or expired.
var ErrSessionInvalid = errors.New("partner session invalid")
