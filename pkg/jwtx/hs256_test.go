package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/docuchat/docuchat/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "docuchat"
	testAudience = "docuchat-api"
)

func newPair(t *testing.T, now func() time.Time) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()

	signer, err := jwtx.NewHS256Signer(testSecret)
	require.NoError(t, err)

	verifier, err := jwtx.NewHS256Verifier(testSecret, testIssuer, []string{testAudience})
	require.NoError(t, err)

	return signer, verifier.WithClock(now)
}

func TestHS256_RoundTrip(t *testing.T) {
	issuedAt := time.Now().Truncate(time.Second)
	signer, verifier := newPair(t, func() time.Time { return issuedAt.Add(time.Minute) })

	claims := jwtx.NewAccessClaims("user-1", "tenant-1", "member", testIssuer, []string{testAudience}, 900*time.Second, issuedAt)
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "tenant-1", got.TenantID)
	require.Equal(t, "member", got.Role)
	require.Equal(t, claims.ID, got.ID)
}

func TestHS256_Rejections(t *testing.T) {
	issuedAt := time.Now().Truncate(time.Second)

	sign := func(t *testing.T, c jwtx.Claims) string {
		t.Helper()
		signer, err := jwtx.NewHS256Signer(testSecret)
		require.NoError(t, err)
		token, err := signer.Sign(c)
		require.NoError(t, err)
		return token
	}
	valid := func() jwtx.Claims {
		return jwtx.NewAccessClaims("user-1", "tenant-1", "owner", testIssuer, []string{testAudience}, 900*time.Second, issuedAt)
	}

	tests := []struct {
		name   string
		now    time.Time
		token  func(t *testing.T) string
		reason error
	}{
		{
			name:   "expired after ttl",
			now:    issuedAt.Add(901 * time.Second),
			token:  func(t *testing.T) string { return sign(t, valid()) },
			reason: jwtx.ErrExpired,
		},
		{
			name: "tampered signature",
			now:  issuedAt,
			token: func(t *testing.T) string {
				parts := strings.Split(sign(t, valid()), ".")
				// The first signature character carries six full bits.
				repl := "A"
				if parts[2][0] == 'A' {
					repl = "B"
				}
				return parts[0] + "." + parts[1] + "." + repl + parts[2][1:]
			},
			reason: jwtx.ErrInvalidSig,
		},
		{
			name: "tampered payload",
			now:  issuedAt,
			token: func(t *testing.T) string {
				parts := strings.Split(sign(t, valid()), ".")
				other := strings.Split(sign(t, jwtx.NewAccessClaims("user-2", "tenant-1", "owner", testIssuer, []string{testAudience}, time.Hour, issuedAt)), ".")
				return parts[0] + "." + other[1] + "." + parts[2]
			},
			reason: jwtx.ErrInvalidSig,
		},
		{
			name: "wrong key",
			now:  issuedAt,
			token: func(t *testing.T) string {
				signer, err := jwtx.NewHS256Signer(strings.Repeat("z", 32))
				require.NoError(t, err)
				tok, err := signer.Sign(valid())
				require.NoError(t, err)
				return tok
			},
			reason: jwtx.ErrInvalidSig,
		},
		{
			name: "wrong issuer",
			now:  issuedAt,
			token: func(t *testing.T) string {
				c := valid()
				c.Issuer = "elsewhere"
				return sign(t, c)
			},
			reason: jwtx.ErrIssuer,
		},
		{
			name: "wrong audience",
			now:  issuedAt,
			token: func(t *testing.T) string {
				c := valid()
				c.Audience = jwt.ClaimStrings{"another-api"}
				return sign(t, c)
			},
			reason: jwtx.ErrAudience,
		},
		{
			name: "missing tenant",
			now:  issuedAt,
			token: func(t *testing.T) string {
				c := valid()
				c.TenantID = ""
				return sign(t, c)
			},
			reason: jwtx.ErrInvalidClaim,
		},
		{
			name: "unsigned token",
			now:  issuedAt,
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, valid()).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name:   "garbage",
			now:    issuedAt,
			token:  func(*testing.T) string { return "not.a.jwt" },
			reason: jwtx.ErrMalformed,
		},
		{
			name:   "empty",
			now:    issuedAt,
			token:  func(*testing.T) string { return "" },
			reason: jwtx.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, verifier := newPair(t, func() time.Time { return tt.now })

			_, err := verifier.Verify(tt.token(t))
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
			if tt.reason != nil {
				require.ErrorIs(t, err, tt.reason)
			}
		})
	}
}

func TestHS256_WeakKey(t *testing.T) {
	_, err := jwtx.NewHS256Signer("short")
	require.ErrorIs(t, err, jwtx.ErrWeakKey)

	_, err = jwtx.NewHS256Verifier("short", testIssuer, nil)
	require.ErrorIs(t, err, jwtx.ErrWeakKey)
}
