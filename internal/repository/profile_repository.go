package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/realmeet/checkin-service/internal/model"
)

// ProfileRepo provides read access to profiles.  The check-in service uses
// it for partner login and for loading the partner behind a session token.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a ProfileRepo bound to the provided database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// GetBusinessByEmail loads a business profile by email for login.  Lookups
// of individual accounts fall through to ErrProfileNotFound so the login
// endpoint cannot be used to probe which emails exist.
func (r *ProfileRepo) GetBusinessByEmail(ctx context.Context, email string) (model.Profile, error) {
	const q = `SELECT id, full_name, email, password_hash, account_type, business_name, avatar_url, created_at
	           FROM profiles WHERE email = ? AND account_type = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email, model.AccountBusiness))
}

// GetBusinessByID loads a business profile by id.  Used when resolving a
// partner session back to its account.
func (r *ProfileRepo) GetBusinessByID(ctx context.Context, id string) (model.Profile, error) {
	const q = `SELECT id, full_name, email, password_hash, account_type, business_name, avatar_url, created_at
	           FROM profiles WHERE id = ? AND account_type = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, model.AccountBusiness))
}

func (r *ProfileRepo) scanOne(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	var businessName, avatarURL sql.NullString
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.PasswordHash, &p.AccountType,
		&businessName, &avatarURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}
	if businessName.Valid {
		v := businessName.String
		p.BusinessName = &v
	}
	if avatarURL.Valid {
		v := avatarURL.String
		p.AvatarURL = &v
	}
	return p, nil
}
