package model

import "time"

// Account types stored in profiles.account_type.
const (
	AccountIndividual = "individual"
	AccountBusiness   = "business"
)

// Profile is a platform account.  Individual accounts hold reservations;
// business accounts ("partners") run activities and operate the staff
// scanner at the venue entrance.
type Profile struct {
	ID           string    // profiles.id (UUID)
	FullName     string    // profiles.full_name
	Email        string    // profiles.email
	PasswordHash string    // profiles.password_hash (bcrypt)
	AccountType  string    // profiles.account_type
	BusinessName *string   // profiles.business_name (nullable)
	AvatarURL    *string   // profiles.avatar_url (nullable)
	CreatedAt    time.Time // profiles.created_at
}

// PartnerSession records an issued staff session token so sessions can be
// audited and revoked.  Only the SHA-256 hash of the token is stored.
type PartnerSession struct {
	ID         uint64     // partner_sessions.id
	PartnerID  string     // partner_sessions.partner_id
	TokenHash  string     // partner_sessions.token_hash
	ExpiresAt  time.Time  // partner_sessions.expires_at
	RevokedAt  *time.Time // partner_sessions.revoked_at (nullable)
	DeviceInfo string     // partner_sessions.device_info
	IPAddress  string     // partner_sessions.ip_address
	CreatedAt  time.Time  // partner_sessions.created_at
}
