package domain

import "time"

// Invitation lets the holder of the mailed token join TenantID with Role. It
// is single use: once AcceptedAt is set the token is inert.
type Invitation struct {
	ID         string
	TenantID   string
	Email      string // lower-cased; must match the accepting user's email
	Role       Role
	TokenHash  string // keyed digest, never the raw token
	InvitedBy  string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the invitation can still be accepted at now.
func (i Invitation) Usable(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}
