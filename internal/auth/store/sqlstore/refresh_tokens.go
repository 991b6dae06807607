package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

type refreshTokensRepo struct {
	q conn
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_by_ip, user_agent,
	revoked_at, revoked_by_ip, replaced_by, created_at`

func scanRefreshToken(row interface{ Scan(...any) error }) (domain.RefreshToken, error) {
	var (
		t          domain.RefreshToken
		revokedAt  sql.NullTime
		revokedBy  sql.NullString
		replacedBy sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedByIP, &t.UserAgent,
		&revokedAt, &revokedBy, &replacedBy, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.RevokedAt = mapNullTimePtr(revokedAt)
	t.RevokedByIP = mapNullString(revokedBy)
	t.ReplacedBy = mapNullString(replacedBy)
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	return r.q.insert(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_by_ip, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, utc(t.ExpiresAt), t.CreatedByIP, t.UserAgent, utc(t.CreatedAt),
	)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	return scanRefreshToken(r.q.queryRow(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash,
	))
}

func (r *refreshTokensRepo) ListUserRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RefreshToken
	for rows.Next() {
		t, err := scanRefreshToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *refreshTokensRepo) RevokeRefreshToken(
	ctx context.Context,
	id string,
	now time.Time,
	ip, replacedBy string,
) (bool, error) {
	n, err := r.q.execAffected(ctx,
		`UPDATE refresh_tokens SET revoked_at = ?, revoked_by_ip = ?, replaced_by = ?
		 WHERE id = ? AND revoked_at IS NULL`,
		utc(now), mapStringNull(ip), mapStringNull(replacedBy), id,
	)
	return n > 0, err
}

func (r *refreshTokensRepo) RevokeRefreshTokenByHash(
	ctx context.Context,
	hash string,
	now time.Time,
	ip string,
) (bool, error) {
	n, err := r.q.execAffected(ctx,
		`UPDATE refresh_tokens SET revoked_at = ?, revoked_by_ip = ?
		 WHERE token_hash = ? AND revoked_at IS NULL`,
		utc(now), mapStringNull(ip), hash,
	)
	return n > 0, err
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(
	ctx context.Context,
	userID string,
	now time.Time,
	ip string,
) (int64, error) {
	return r.q.execAffected(ctx,
		`UPDATE refresh_tokens SET revoked_at = ?, revoked_by_ip = ?
		 WHERE user_id = ? AND revoked_at IS NULL`,
		utc(now), mapStringNull(ip), userID,
	)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.q.execAffected(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, utc(cutoff))
}
