package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	// TokenSizeCSRF is used for the double-submit cookie value.
	TokenSizeCSRF = 32
	// DefaultTokenSize backs email verification, password reset and invite links.
	DefaultTokenSize = 48
	// TokenSizeRefresh backs refresh tokens.
	TokenSizeRefresh = 64
)

// GenerateToken returns size bytes from crypto/rand encoded as base64url
// without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is an unkeyed SHA-256 digest (base64url, 43 chars). Only
// use it for values that are not secrets on their own.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// KeyedFingerprint is an HMAC-SHA256 digest of token under secret (base64url,
// 43 chars). Refresh, verification, reset and invite tokens are stored this
// way so a leaked table cannot be brute forced offline without the secret.
func KeyedFingerprint(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
