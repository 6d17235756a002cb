package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/realmeet/checkin-service/internal/model"
)

// SlotRepo provides read access to activity_slots for the staff dashboard
// endpoints (per-slot status and today's schedule).
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the provided database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// SlotWithActivity pairs a slot with the activity it belongs to.
type SlotWithActivity struct {
	Slot     model.Slot
	Activity model.Activity
}

// GetWithActivity loads one slot together with its activity.  Returns
// ErrSlotNotFound when the id matches no row.
func (r *SlotRepo) GetWithActivity(ctx context.Context, slotID uint64) (SlotWithActivity, error) {
	const q = `SELECT s.id, s.activity_id, s.starts_at, s.ends_at, s.max_participants,
	                  a.id, a.name, a.host_id, a.address, a.city
	           FROM activity_slots s
	           JOIN activities a ON a.id = s.activity_id
	           WHERE s.id = ?`
	var sw SlotWithActivity
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(
		&sw.Slot.ID, &sw.Slot.ActivityID, &sw.Slot.StartsAt, &sw.Slot.EndsAt, &sw.Slot.MaxParticipants,
		&sw.Activity.ID, &sw.Activity.Name, &sw.Activity.HostID, &sw.Activity.Address, &sw.Activity.City)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SlotWithActivity{}, ErrSlotNotFound
		}
		return SlotWithActivity{}, err
	}
	return sw, nil
}

// ListByHostBetween returns all slots of a partner's activities starting
// within [from, to), ordered by start time.  The staff dashboard uses a
// one-day range to show today's schedule.
func (r *SlotRepo) ListByHostBetween(ctx context.Context, hostID string, from, to time.Time) ([]SlotWithActivity, error) {
	const q = `SELECT s.id, s.activity_id, s.starts_at, s.ends_at, s.max_participants,
	                  a.id, a.name, a.host_id, a.address, a.city
	           FROM activity_slots s
	           JOIN activities a ON a.id = s.activity_id
	           WHERE a.host_id = ? AND s.starts_at >= ? AND s.starts_at < ?
	           ORDER BY s.starts_at`
	rows, err := r.db.QueryContext(ctx, q, hostID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SlotWithActivity
	for rows.Next() {
		var sw SlotWithActivity
		if err := rows.Scan(
			&sw.Slot.ID, &sw.Slot.ActivityID, &sw.Slot.StartsAt, &sw.Slot.EndsAt, &sw.Slot.MaxParticipants,
			&sw.Activity.ID, &sw.Activity.Name, &sw.Activity.HostID, &sw.Activity.Address, &sw.Activity.City); err != nil {
			return nil, err
		}
		out = append(out, sw)
	}
	return out, rows.Err()
}
