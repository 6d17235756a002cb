package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/realmeet/checkin-service/internal/model"
)

// CheckinTokenRepo provides data access to the checkin_tokens table.  The
// table holds at most one row per reservation (unique slot_participant_id),
// which makes supersession automatic: storing a fresh token overwrites the
// previous one, so an older raw value no longer matches any row and can
// never be redeemed.  All timestamps are UTC.
type CheckinTokenRepo struct {
	db *sql.DB
}

// NewCheckinTokenRepo returns a CheckinTokenRepo bound to the provided database.
func NewCheckinTokenRepo(db *sql.DB) *CheckinTokenRepo { return &CheckinTokenRepo{db: db} }

// Supersede stores the latest token for a reservation, replacing any prior
// row for the same reservation.  The consumed columns are cleared because
// the new token starts its life unconsumed; an already checked-in
// reservation is rejected before issuance ever reaches this point, and the
// consume path re-verifies the checked-in flag inside its transaction.
func (r *CheckinTokenRepo) Supersede(ctx context.Context, rec model.CheckinToken) error {
	const q = `INSERT INTO checkin_tokens (slot_participant_id, token_hash, issued_at, expires_at)
	           VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               token_hash = VALUES(token_hash),
	               issued_at = VALUES(issued_at),
	               expires_at = VALUES(expires_at),
	               consumed_at = NULL,
	               consumed_by = NULL`
	_, err := r.db.ExecContext(ctx, q,
		rec.ReservationID, rec.TokenHash,
		rec.IssuedAt.UTC(), rec.ExpiresAt.UTC())
	return err
}

// GetByHash loads a token row by the hash of its raw value.  It returns
// ErrTokenNotFound when no row matches, which covers forged values and
// superseded tokens alike.
func (r *CheckinTokenRepo) GetByHash(ctx context.Context, hash string) (model.CheckinToken, error) {
	const q = `SELECT id, slot_participant_id, token_hash, issued_at, expires_at, consumed_at, consumed_by
	           FROM checkin_tokens WHERE token_hash = ? LIMIT 1`
	var t model.CheckinToken
	var consumedAt sql.NullTime
	var consumedBy sql.NullString
	err := r.db.QueryRowContext(ctx, q, hash).Scan(
		&t.ID, &t.ReservationID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt, &consumedAt, &consumedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CheckinToken{}, ErrTokenNotFound
		}
		return model.CheckinToken{}, err
	}
	if consumedAt.Valid {
		v := consumedAt.Time
		t.ConsumedAt = &v
	}
	if consumedBy.Valid {
		v := consumedBy.String
		t.ConsumedBy = &v
	}
	return t, nil
}

// Consume atomically redeems a token and marks the underlying reservation
// checked in.  The conditional UPDATE on consumed_at is the sole
// serialization point: when two scans race, exactly one update affects a
// row and the loser gets ErrTokenConsumed.  Both writes happen in one
// transaction so a token can never be burned without its reservation being
// flagged, or vice versa.
func (r *CheckinTokenRepo) Consume(ctx context.Context, hash, partnerID string, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now = now.UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE checkin_tokens
		 SET consumed_at = ?, consumed_by = ?
		 WHERE token_hash = ? AND consumed_at IS NULL AND expires_at > ?`,
		now, partnerID, hash, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenConsumed
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE slot_participants sp
		 JOIN checkin_tokens t ON t.slot_participant_id = sp.id
		 SET sp.checked_in_at = ?, sp.checked_in_by = ?
		 WHERE t.token_hash = ? AND sp.checked_in_at IS NULL`,
		now, partnerID, hash)
	if err != nil {
		return err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Reservation was checked in through another path; do not burn the
		// token row without it, roll everything back instead.
		return ErrTokenConsumed
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
