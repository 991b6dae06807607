package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// ErrInvalidToken is wrapped by every verification failure. Callers that only
// need a yes/no answer match on it; the second wrapped error says why.
var ErrInvalidToken = errors.New("jwtx: invalid token")

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates tokens produced by HS256Signer with the same key.
type HS256Verifier struct {
	key      []byte
	issuer   string
	audience []string
	now      func() time.Time
}

// NewHS256Verifier returns a verifier enforcing issuer and audience. The key
// must satisfy the same rules as NewHS256Signer.
func NewHS256Verifier(secret, issuer string, audience []string) (*HS256Verifier, error) {
	if err := validateKey(secret); err != nil {
		return nil, err
	}
	return &HS256Verifier{
		key:      []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}, nil
}

// WithClock replaces the time source used for exp/nbf checks.
func (v *HS256Verifier) WithClock(now func() time.Time) *HS256Verifier {
	v.now = now
	return v
}

// Verify checks the signature first and only then the registered claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// exp/nbf are checked below against our own clock.
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Claims{}, invalid(classifyParseError(err))
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateAudience(v.audience); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateExpiryAt(v.now()); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateSession(); err != nil {
		return Claims{}, invalid(err)
	}

	return claims, nil
}

func invalid(reason error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, reason)
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
