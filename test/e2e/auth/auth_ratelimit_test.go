//go:build integration

package auth_test

import (
	"net/http"
	"testing"

	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies the strict limit (5 req/min per IP and
// email) with production defaults.
func TestRateLimitLoginEndpoint(t *testing.T) {
	s := setupStack(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS": "",
		"RATELIMIT_STRICT_BURST":    "",
	})
	client := s.client(t)
	req := authsdk.LoginRequest{Email: "ghost@acme.test", Password: "wrong-password"}

	for i := range 5 {
		err := client.Login(t.Context(), req)
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.NotEqual(t, http.StatusTooManyRequests, apiErr.StatusCode, "request %d should not be rate limited", i+1)
	}

	err := client.Login(t.Context(), req)
	assertAPIError(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
}
