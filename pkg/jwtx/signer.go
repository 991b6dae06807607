package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HS256 secret accepted, in bytes.
const MinKeyLength = 32

var ErrWeakKey = fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", MinKeyLength)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs claims with a shared symmetric key.
type HS256Signer struct {
	key []byte
}

// NewHS256Signer returns a signer for secret.
func NewHS256Signer(secret string) (*HS256Signer, error) {
	if err := validateKey(secret); err != nil {
		return nil, err
	}
	return &HS256Signer{key: []byte(secret)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func validateKey(secret string) error {
	if len(secret) < MinKeyLength {
		return ErrWeakKey
	}
	return nil
}
