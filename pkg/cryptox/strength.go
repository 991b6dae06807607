package cryptox

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrWeakPassword is matched by every error ValidatePasswordStrength returns.
var ErrWeakPassword = errors.New("cryptox: weak password")

// StrengthError names the first strength rule a password failed.
type StrengthError struct {
	Rule    string // length, uppercase, lowercase, digit
	Message string
}

func (e *StrengthError) Error() string { return e.Message }

func (e *StrengthError) Is(target error) bool { return target == ErrWeakPassword }

// ValidatePasswordStrength checks, in this order, minimum length, an ASCII
// uppercase letter, an ASCII lowercase letter and a digit. Only the first
// failing rule is reported.
func ValidatePasswordStrength(password string, minLength int) error {
	if utf8.RuneCountInString(password) < minLength {
		return &StrengthError{
			Rule:    "length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", minLength),
		}
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}

	switch {
	case !upper:
		return &StrengthError{Rule: "uppercase", Message: "Password must include at least one uppercase letter."}
	case !lower:
		return &StrengthError{Rule: "lowercase", Message: "Password must include at least one lowercase letter."}
	case !digit:
		return &StrengthError{Rule: "digit", Message: "Password must include at least one number."}
	}

	return nil
}
