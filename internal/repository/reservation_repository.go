package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/realmeet/checkin-service/internal/model"
)

// ReservationRepo provides read access to slot_participants together with
// the slot, activity and participant profile a check-in decision needs.
// The booking side of the platform owns these rows; the check-in service
// only ever reads them and flips the checked-in flag inside the token
// consume transaction (see CheckinTokenRepo.Consume).
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the provided database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// GetDetail loads a reservation plus its slot, activity and participant
// profile in one round trip. It returns ErrReservationNotFound when the
// identifier matches no row.
func (r *ReservationRepo) GetDetail(ctx context.Context, id string) (model.ReservationDetail, error) {
	const q = `SELECT sp.id, sp.user_id, sp.slot_id, sp.activity_id, sp.checked_in_at, sp.checked_in_by,
	                  s.id, s.activity_id, s.starts_at, s.ends_at, s.max_participants,
	                  a.id, a.name, a.host_id, a.address, a.city,
	                  p.id, p.full_name, p.avatar_url
	           FROM slot_participants sp
	           JOIN activity_slots s ON s.id = sp.slot_id
	           JOIN activities a ON a.id = sp.activity_id
	           JOIN profiles p ON p.id = sp.user_id
	           WHERE sp.id = ?`
	var d model.ReservationDetail
	var checkedInAt sql.NullTime
	var checkedInBy sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.Reservation.ID, &d.Reservation.UserID, &d.Reservation.SlotID, &d.Reservation.ActivityID,
		&checkedInAt, &checkedInBy,
		&d.Slot.ID, &d.Slot.ActivityID, &d.Slot.StartsAt, &d.Slot.EndsAt, &d.Slot.MaxParticipants,
		&d.Activity.ID, &d.Activity.Name, &d.Activity.HostID, &d.Activity.Address, &d.Activity.City,
		&d.Participant.ID, &d.Participant.FullName, &d.Participant.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ReservationDetail{}, ErrReservationNotFound
		}
		return model.ReservationDetail{}, err
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		d.Reservation.CheckedInAt = &t
	}
	if checkedInBy.Valid {
		v := checkedInBy.String
		d.Reservation.CheckedInBy = &v
	}
	return d, nil
}

// ParticipantStatus is one row of a slot roster: who has a claim on the
// slot and whether they have been checked in yet.
type ParticipantStatus struct {
	ReservationID string     `json:"id"`
	Name          string     `json:"name"`
	AvatarURL     *string    `json:"avatar,omitempty"`
	CheckedIn     bool       `json:"checked_in"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
}

// ListBySlot returns the roster for one slot ordered by participant name.
func (r *ReservationRepo) ListBySlot(ctx context.Context, slotID uint64) ([]ParticipantStatus, error) {
	const q = `SELECT sp.id, p.full_name, p.avatar_url, sp.checked_in_at
	           FROM slot_participants sp
	           JOIN profiles p ON p.id = sp.user_id
	           WHERE sp.slot_id = ?
	           ORDER BY p.full_name`
	rows, err := r.db.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ParticipantStatus
	for rows.Next() {
		var ps ParticipantStatus
		var checkedInAt sql.NullTime
		if err := rows.Scan(&ps.ReservationID, &ps.Name, &ps.AvatarURL, &checkedInAt); err != nil {
			return nil, err
		}
		if checkedInAt.Valid {
			t := checkedInAt.Time
			ps.CheckedIn = true
			ps.CheckedInAt = &t
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// CountBySlot returns the total number of reservations and how many of
// them are already checked in for the given slot.
func (r *ReservationRepo) CountBySlot(ctx context.Context, slotID uint64) (total, checkedIn uint32, err error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(checked_in_at IS NOT NULL), 0)
	           FROM slot_participants WHERE slot_id = ?`
	err = r.db.QueryRowContext(ctx, q, slotID).Scan(&total, &checkedIn)
	return total, checkedIn, err
}
