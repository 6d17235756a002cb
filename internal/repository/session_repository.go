package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRepo persists partner session token hashes so staff sessions can
// be audited and revoked server-side (mirrors the refresh-token pattern:
// only a SHA-256 hash of the raw token is ever stored).
type SessionRepo struct{ DB *sql.DB }

// NewSessionRepo returns a SessionRepo bound to the provided database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Store inserts a session row for an issued partner token.
func (r *SessionRepo) Store(ctx context.Context, partnerID, tokenHash string, exp time.Time, deviceInfo, ip string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO partner_sessions (partner_id, token_hash, expires_at, device_info, ip_address)
		 VALUES (?, ?, ?, ?, ?)`,
		partnerID, tokenHash, exp.UTC(), deviceInfo, ip)
	return err
}

// Validate returns the partner ID if a non-revoked, non-expired session
// exists for the hash.  Any other state maps to ErrSessionInvalid.
func (r *SessionRepo) Validate(ctx context.Context, tokenHash string) (string, error) {
	var (
		partnerID string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT partner_id, expires_at, revoked_at FROM partner_sessions WHERE token_hash = ? LIMIT 1`,
		tokenHash).Scan(&partnerID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSessionInvalid
		}
		return "", err
	}
	if revokedAt.Valid {
		return "", ErrSessionInvalid
	}
	if time.Now().UTC().After(expiresAt) {
		return "", ErrSessionInvalid
	}
	return partnerID, nil
}

// RevokeByHash marks a session as revoked.
func (r *SessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE partner_sessions SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL`,
		tokenHash)
	return err
}
