package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/mail"
	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/docuchat/docuchat/pkg/idx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

// InviteManagers are the roles allowed to invite into their tenant.
var InviteManagers = []domain.Role{domain.RoleOwner, domain.RoleAdmin}

type InvitationService struct {
	Store      store.Store
	Mailer     mail.Sender
	Metrics    *metrics.Metrics
	Secret     string // keyed digest secret
	TTL        time.Duration
	AppBaseURL string
	Now        func() time.Time
}

// Create invites email into tenantID with role on behalf of caller and mails
// the accept link. The raw token is never returned.
func (s *InvitationService) Create(
	ctx context.Context,
	caller domain.Identity,
	tenantID string,
	email string,
	role domain.Role,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Only owners and admins may invite.
	if !domain.HasCapability(caller.Role, InviteManagers...) {
		log.Warn("invitation denied for role",
			slog.String("user_id", caller.UserID),
			slog.String("role", caller.Role.String()),
		)
		return domain.Invitation{}, ErrForbidden
	}

	// 2. Validate the request body.
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Invitation{}, err
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return domain.Invitation{}, invalid("role", "Role must be one of owner, admin, member.")
	}

	// 3. Sessions are bound to one tenant; cross-tenant invites are refused.
	if caller.TenantID != tenantID {
		log.Warn("invitation attempted for another tenant",
			slog.String("user_id", caller.UserID),
			slog.String("session_tenant_id", caller.TenantID),
			slog.String("tenant_id", tenantID),
		)
		return domain.Invitation{}, ErrForbidden
	}

	// 4. Generate, fingerprint and store.
	token, err := cryptox.GenerateToken(cryptox.DefaultTokenSize)
	if err != nil {
		return domain.Invitation{}, err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now := clock(s.Now)

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		TokenHash: cryptox.KeyedFingerprint(token, s.Secret),
		InvitedBy: caller.UserID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.String("invitation_id", inv.ID), slog.Any("error", err))
		return domain.Invitation{}, err
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("tenant_id", tenantID),
		slog.String("role", role.String()),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	// 5. Mail the link after the row is durable.
	mail.Dispatch(ctx, s.Mailer, s.Metrics, mail.Message{
		To:      email,
		Subject: mail.SubjectInvitation,
		Text:    "Accept your invite: " + link(s.AppBaseURL, "/accept-invite", token),
	})

	return inv, nil
}
