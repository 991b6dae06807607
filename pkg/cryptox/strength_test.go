package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	const minLength = 12

	tests := []struct {
		name     string
		password string
		rule     string
		message  string
	}{
		// Fails several rules, only length is reported.
		{"short with other gaps", "short1A", "length", "Password must be at least 12 characters long."},
		{"short lowercase only", "abc", "length", "Password must be at least 12 characters long."},
		{"missing uppercase", "lowercase1234", "uppercase", "Password must include at least one uppercase letter."},
		{"missing uppercase and digit", "lowercaseonly", "uppercase", "Password must include at least one uppercase letter."},
		{"missing lowercase", "UPPERCASE1234", "lowercase", "Password must include at least one lowercase letter."},
		{"missing number", "NoNumbersHere", "digit", "Password must include at least one number."},
		{"non ascii letters do not count", "ÄÖÜäöü123456", "uppercase", "Password must include at least one uppercase letter."},
		{"strong", "StrongPass123", "", ""},
		{"exactly min length", "Abcdefghij12", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password, minLength)
			if tt.rule == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrWeakPassword)

			var se *StrengthError
			require.ErrorAs(t, err, &se)
			require.Equal(t, tt.rule, se.Rule)
			require.Equal(t, tt.message, se.Error())
		})
	}
}

func TestValidatePasswordStrength_CountsRunes(t *testing.T) {
	// 12 runes, more than 12 bytes.
	require.NoError(t, ValidatePasswordStrength("Aé1bcdefghij", 12))
	require.Error(t, ValidatePasswordStrength("Aé1bcdefghi", 12))
}
