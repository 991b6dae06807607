package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

type usersRepo struct {
	q conn
}

const userColumns = `id, email, password_hash, email_verified_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u        domain.User
		verified sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &verified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.EmailVerifiedAt = mapNullTimePtr(verified)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	var verified sql.NullTime
	if u.EmailVerifiedAt != nil {
		verified = sql.NullTime{Time: utc(*u.EmailVerifiedAt), Valid: true}
	}
	return r.q.insertOrSkip(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO NOTHING`,
		u.ID, u.Email, u.PasswordHash, verified, utc(u.CreatedAt), utc(u.UpdatedAt),
	)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	n, err := r.q.execAffected(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, utc(now), userID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string, now time.Time) (bool, error) {
	n, err := r.q.execAffected(ctx,
		`UPDATE users SET email_verified_at = ?, updated_at = ?
		 WHERE id = ? AND email_verified_at IS NULL`,
		utc(now), utc(now), userID,
	)
	return n > 0, err
}
