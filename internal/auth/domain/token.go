package domain

import "time"

// RefreshTokenState is the position of a record in its rotation chain.
type RefreshTokenState string

const (
	RefreshTokenActive  RefreshTokenState = "active"
	RefreshTokenRotated RefreshTokenState = "rotated" // revoked with a successor
	RefreshTokenRevoked RefreshTokenState = "revoked" // revoked without a successor
	RefreshTokenExpired RefreshTokenState = "expired" // past ExpiresAt, not yet marked
)

// RefreshToken is one link of a rotation chain. ReplacedBy points at the
// record that superseded it.
type RefreshToken struct {
	ID          string
	UserID      string
	TokenHash   string // keyed digest, never the raw token
	ExpiresAt   time.Time
	CreatedByIP string
	UserAgent   string
	RevokedAt   *time.Time
	RevokedByIP string
	ReplacedBy  string
	CreatedAt   time.Time
}

// State derives the chain state at now. Revocation wins over expiry.
func (t RefreshToken) State(now time.Time) RefreshTokenState {
	switch {
	case t.RevokedAt != nil && t.ReplacedBy != "":
		return RefreshTokenRotated
	case t.RevokedAt != nil:
		return RefreshTokenRevoked
	case !now.Before(t.ExpiresAt):
		return RefreshTokenExpired
	default:
		return RefreshTokenActive
	}
}

// TokenPurpose selects the table a one-time token lives in.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

// OneTimeToken is an email verification or password reset token.
type OneTimeToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be consumed at now.
func (t OneTimeToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
