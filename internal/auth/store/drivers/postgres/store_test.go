package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/auth/store/drivers/postgres"
	"github.com/docuchat/docuchat/internal/auth/store/sqlstore"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T) (*sqlstore.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return postgres.Wrap(db), mock
}

func TestDialect_Rebind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"UPDATE t SET a = ?, b = ? WHERE id = ?", "UPDATE t SET a = $1, b = $2 WHERE id = $3"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, postgres.Dialect{}.Rebind(tt.in))
	}
}

func TestDialect_IsUniqueViolation(t *testing.T) {
	t.Parallel()

	d := postgres.Dialect{}
	require.True(t, d.IsUniqueViolation(&pq.Error{Code: "23505"}))
	require.False(t, d.IsUniqueViolation(&pq.Error{Code: "23503"}))
	require.False(t, d.IsUniqueViolation(errors.New("boom")))
}

func TestRefreshTokens_RevokeIsConditional(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $4 AND revoked_at IS NULL`)).
		WithArgs(now, "10.0.0.1", "rt-2", "rt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $4 AND revoked_at IS NULL`)).
		WithArgs(now, "10.0.0.1", "rt-3", "rt-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.RefreshTokens().RevokeRefreshToken(context.Background(), "rt-1", now, "10.0.0.1", "rt-2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.RefreshTokens().RevokeRefreshToken(context.Background(), "rt-1", now, "10.0.0.1", "rt-3")
	require.NoError(t, err)
	require.False(t, ok, "second revoke must lose")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenants_SlugConflict(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (slug) DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Tenants().CreateTenant(context.Background(), domain.Tenant{
		ID: "t1", Name: "Acme", Slug: "acme", CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokens_DuplicateHash(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

	err := s.RefreshTokens().CreateRefreshToken(context.Background(), domain.RefreshToken{
		ID: "rt-1", UserID: "u1", TokenHash: "h", ExpiresAt: time.Now(), CreatedAt: time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsers_GetByEmailNotFound(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "email_verified_at", "created_at", "updated_at"}))

	_, err := s.Users().GetUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberships_Earliest(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at ASC, id ASC LIMIT 1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "user_id", "role", "created_at"}).
			AddRow("m1", "t1", "u1", "owner", created))

	m, err := s.Memberships().GetEarliestMembership(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "t1", m.TenantID)
	require.Equal(t, domain.RoleOwner, m.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email_verified_at`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		if _, err := tx.Users().MarkEmailVerified(context.Background(), "u1", time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_Commits(t *testing.T) {
	t.Parallel()

	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE email_verification_tokens SET used_at`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		ok, err := tx.OneTimeTokens(domain.PurposeEmailVerification).MarkTokenUsed(context.Background(), "tok-1", time.Now())
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
