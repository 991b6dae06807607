package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

var oneTimeTokenTables = map[domain.TokenPurpose]string{
	domain.PurposeEmailVerification: "email_verification_tokens",
	domain.PurposePasswordReset:     "password_reset_tokens",
}

type oneTimeTokensRepo struct {
	q     conn
	table string
}

func newOneTimeTokensRepo(q conn, purpose domain.TokenPurpose) *oneTimeTokensRepo {
	table, ok := oneTimeTokenTables[purpose]
	if !ok {
		panic(fmt.Sprintf("sqlstore: unknown token purpose %q", purpose))
	}
	return &oneTimeTokensRepo{q: q, table: table}
}

func (r *oneTimeTokensRepo) CreateToken(ctx context.Context, t domain.OneTimeToken) error {
	return r.q.insert(ctx,
		`INSERT INTO `+r.table+` (id, user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, utc(t.ExpiresAt), utc(t.CreatedAt),
	)
}

func (r *oneTimeTokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.OneTimeToken, error) {
	var (
		t      domain.OneTimeToken
		usedAt sql.NullTime
	)
	err := r.q.queryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at FROM `+r.table+` WHERE token_hash = ?`,
		hash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		return domain.OneTimeToken{}, mapNotFound(err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UsedAt = mapNullTimePtr(usedAt)
	return t, nil
}

func (r *oneTimeTokensRepo) MarkTokenUsed(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := r.q.execAffected(ctx,
		`UPDATE `+r.table+` SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		utc(now), id,
	)
	return n > 0, err
}

func (r *oneTimeTokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.execAffected(ctx, `DELETE FROM `+r.table+` WHERE expires_at < ?`, utc(now))
}
