package service

import (
	"errors"
	"fmt"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/pkg/cryptox"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidCredentials    = errors.New("invalid_credentials")
	ErrForbidden             = errors.New("forbidden")
	ErrEmailNotVerified      = errors.New("email_not_verified")
	ErrNoMembership          = errors.New("no_membership")
	ErrEmailTaken            = errors.New("email_taken")
	ErrInvalidOrExpiredToken = errors.New("invalid_or_expired_token")
	ErrInvalidInvite         = errors.New("invalid_invite")
	ErrTenantCreationFailed  = errors.New("tenant_creation_failed")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation_failed")
)

// ValidationError rejects a single input field with a message safe to show
// to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// normalizeEmail lower-cases and validates an address. Display names and
// other RFC 5322 decorations are rejected.
func normalizeEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if email == "" {
		return "", invalid("email", "Email is required.")
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "", invalid("email", "Email is invalid.")
	}
	return email, nil
}

func validatePassword(password string, minLength int) error {
	if err := cryptox.ValidatePasswordStrength(password, minLength); err != nil {
		var se *cryptox.StrengthError
		if errors.As(err, &se) {
			return invalid("password", se.Message)
		}
		return invalid("password", err.Error())
	}
	return nil
}

func requireToken(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid(field, "Token is required.")
	}
	return raw, nil
}

// clock returns now() in UTC at second precision. Every timestamp written to
// the store goes through it.
func clock(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Second)
}

// link builds the frontend URL mailed to users.
func link(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}
