package sqlstore

import (
	"context"
	"database/sql"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

type tenantsRepo struct {
	q conn
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	return r.q.insertOrSkip(ctx,
		`INSERT INTO tenants (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (slug) DO NOTHING`,
		t.ID, t.Name, t.Slug, utc(t.CreatedAt), utc(t.UpdatedAt),
	)
}

type membershipsRepo struct {
	q conn
}

func scanMembership(row *sql.Row) (domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	if err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &role, &m.CreatedAt); err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	m.Role = domain.Role(role)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	return r.q.insertOrSkip(ctx,
		`INSERT INTO tenant_memberships (id, tenant_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, user_id) DO NOTHING`,
		m.ID, m.TenantID, m.UserID, string(m.Role), utc(m.CreatedAt),
	)
}

func (r *membershipsRepo) GetEarliestMembership(ctx context.Context, userID string) (domain.Membership, error) {
	return scanMembership(r.q.queryRow(ctx,
		`SELECT id, tenant_id, user_id, role, created_at FROM tenant_memberships
		 WHERE user_id = ? ORDER BY created_at ASC, id ASC LIMIT 1`, userID,
	))
}
