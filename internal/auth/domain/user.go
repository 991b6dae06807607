package domain

import (
	"strings"
	"time"
)

type User struct {
	ID              string
	Email           string     // lower-cased, unique
	PasswordHash    string     // argon2id PHC string
	EmailVerifiedAt *time.Time // set once, never cleared
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsVerified reports whether the user confirmed their email address.
func (u User) IsVerified() bool { return u.EmailVerifiedAt != nil }

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
