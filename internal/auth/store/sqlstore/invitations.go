package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

type invitationsRepo struct {
	q conn
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	return r.q.insert(ctx,
		`INSERT INTO invitations (id, tenant_id, email, role, token_hash, invited_by, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TenantID, inv.Email, string(inv.Role), inv.TokenHash, inv.InvitedBy,
		utc(inv.ExpiresAt), utc(inv.CreatedAt),
	)
}

func (r *invitationsRepo) GetInvitationByHash(ctx context.Context, hash string) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		role       string
		acceptedAt sql.NullTime
	)
	err := r.q.queryRow(ctx,
		`SELECT id, tenant_id, email, role, token_hash, invited_by, expires_at, accepted_at, created_at
		 FROM invitations WHERE token_hash = ?`, hash,
	).Scan(&inv.ID, &inv.TenantID, &inv.Email, &role, &inv.TokenHash, &inv.InvitedBy,
		&inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.Role = domain.Role(role)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := r.q.execAffected(ctx,
		`UPDATE invitations SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`,
		utc(now), id,
	)
	return n > 0, err
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	return r.q.execAffected(ctx,
		`DELETE FROM invitations WHERE accepted_at IS NULL AND expires_at < ?`, utc(now),
	)
}
