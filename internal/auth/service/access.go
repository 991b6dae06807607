package service

import (
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/pkg/jwtx"
)

// AccessTokens signs the short-lived session JWT. Verification lives in
// jwtx.HS256Verifier; access tokens are never persisted.
type AccessTokens struct {
	Signer   jwtx.Signer
	Issuer   string
	Audience []string
	TTL      time.Duration
	Now      func() time.Time
}

// Sign issues a token asserting id and returns it with its expiry.
func (a *AccessTokens) Sign(id domain.Identity) (string, time.Time, error) {
	ttl := a.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	now := clock(a.Now)
	claims := jwtx.NewAccessClaims(
		id.UserID,       // subject
		id.TenantID,     // tid
		string(id.Role), // role
		a.Issuer,
		a.Audience,
		ttl,
		now,
	)

	token, err := a.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}
