package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/stretchr/testify/require"
)

func TestInvitationService_Create(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	owner := f.registerVerified(t, "owner@example.com", "Acme")
	tenantID := owner.Tenant.ID

	tests := []struct {
		name     string
		caller   domain.Identity
		tenantID string
		email    string
		role     domain.Role
		wantErr  error
	}{
		{
			name:     "owner invites admin",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleOwner},
			tenantID: tenantID, email: "admin@example.com", role: domain.RoleAdmin,
		},
		{
			name:     "admin invites member",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleAdmin},
			tenantID: tenantID, email: "member@example.com", role: domain.RoleMember,
		},
		{
			name:     "member may not invite",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleMember},
			tenantID: tenantID, email: "x@example.com", role: domain.RoleMember,
			wantErr: service.ErrForbidden,
		},
		{
			name:     "other tenant",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleOwner},
			tenantID: "someone-elses-tenant", email: "x@example.com", role: domain.RoleMember,
			wantErr: service.ErrForbidden,
		},
		{
			name:     "unknown role",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleOwner},
			tenantID: tenantID, email: "x@example.com", role: domain.Role("superuser"),
			wantErr: service.ErrValidation,
		},
		{
			name:     "bad email",
			caller:   domain.Identity{UserID: owner.User.ID, TenantID: tenantID, Role: domain.RoleOwner},
			tenantID: tenantID, email: "nope", role: domain.RoleMember,
			wantErr: service.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.mailer.count()
			inv, err := f.invites.Create(ctx, tt.caller, tt.tenantID, tt.email, tt.role)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Equal(t, before, f.mailer.count(), "no mail on failure")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.role, inv.Role)
			require.Equal(t, tt.caller.UserID, inv.InvitedBy)
			require.Equal(t, f.clock.Now().Add(service.DefaultInviteTTL), inv.ExpiresAt)

			msg := f.mailer.last(t, tt.email)
			require.Equal(t, mail.SubjectInvitation, msg.Subject)
			require.True(t, strings.HasPrefix(msg.Text, "Accept your invite: "+testBaseURL+"/accept-invite?token="))
			require.NotContains(t, msg.Text, inv.TokenHash, "the digest is never mailed")
		})
	}
}
