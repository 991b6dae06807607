//go:build integration

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies liveness and that readiness checks both the
// database and the Redis mail queue.
func TestHealthEndpoints(t *testing.T) {
	s := setupStack(t, nil)
	client := s.client(t)

	live, err := client.GetLiveness(t.Context())
	assertHealthy(t, live, err)

	ready, err := client.GetReadiness(t.Context())
	assertHealthy(t, ready, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Redis)
}
