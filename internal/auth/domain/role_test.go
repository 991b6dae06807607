package domain_test

import (
	"testing"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestHasCapability(t *testing.T) {
	t.Parallel()

	managers := []domain.Role{domain.RoleOwner, domain.RoleAdmin}

	tests := []struct {
		name     string
		role     domain.Role
		required []domain.Role
		want     bool
	}{
		{"owner may manage", domain.RoleOwner, managers, true},
		{"admin may manage", domain.RoleAdmin, managers, true},
		{"member may not manage", domain.RoleMember, managers, false},
		{"member in member list", domain.RoleMember, []domain.Role{domain.RoleMember}, true},
		{"unknown role", domain.Role("superuser"), []domain.Role{domain.Role("superuser")}, false},
		{"empty role", domain.Role(""), managers, false},
		{"nothing required grants nothing", domain.RoleOwner, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.HasCapability(tt.role, tt.required...))
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, r := range domain.Roles {
		got, ok := domain.ParseRole(r.String())
		require.True(t, ok)
		require.Equal(t, r, got)
	}

	_, ok := domain.ParseRole("Owner")
	require.False(t, ok, "roles are case sensitive")
}
