// Package checkin implements the check-in token lifecycle: issuing
// short-lived single-use entry tokens for reservations, verifying them on
// scan, and redeeming them exactly once.
package checkin

import "errors"

// ErrForbidden is returned when the caller does not own the resource in
// question: a participant requesting a token for someone else's
// reservation (including reservations that do not exist, so ownership is
// not enumerable) or a partner scanning a token for an activity they do
// not host.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyCheckedIn is returned when the reservation behind a request is
// already marked checked in.  No token is minted and no redemption occurs.
var ErrAlreadyCheckedIn = errors.New("already checked in")

// ErrSlotEnded is returned when a token is requested for a slot whose end
// time has passed.
var ErrSlotEnded = errors.New("slot already ended")

// ErrTokenNotFound is returned for forged, malformed or superseded token
// values: nothing in the store matches their hash.
var ErrTokenNotFound = errors.New("invalid token")

// ErrTokenExpired is returned when a presented token is past its expiry.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenConsumed is returned when a presented token was already redeemed,
// including the loser of two near-simultaneous scans.
var ErrTokenConsumed = errors.New("token already used")

// ErrOutsideWindow is returned when a scan happens outside the allowed
// check-in window for the slot.
var ErrOutsideWindow = errors.New("outside check-in window")

// ErrReservationNotFound is returned on staff paths when a token points at
// a reservation that no longer exists.
var ErrReservationNotFound = errors.New("reservation not found")
