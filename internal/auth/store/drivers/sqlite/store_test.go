package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/internal/auth/store/drivers/sqlite"
	"github.com/docuchat/docuchat/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s store.Store, email string, now time.Time) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := seedUser(t, s, "alice@example.com", now)

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.False(t, got.IsVerified())
		require.True(t, got.CreatedAt.Equal(now))

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("verify once", func(t *testing.T) {
		ok, err := s.Users().MarkEmailVerified(ctx, u.ID, now)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.Users().MarkEmailVerified(ctx, u.ID, now.Add(time.Minute))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.IsVerified())
		require.True(t, got.EmailVerifiedAt.Equal(now))
	})

	t.Run("password update", func(t *testing.T) {
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash", now))
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)

		require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "missing", "x", now), store.ErrNotFound)
	})
}

func TestTenantsAndMemberships(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	u := seedUser(t, s, "bob@example.com", now)

	first := domain.Tenant{ID: idx.New().String(), Name: "Acme", Slug: "acme", CreatedAt: now, UpdatedAt: now}
	second := domain.Tenant{ID: idx.New().String(), Name: "Beta", Slug: "beta", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Tenants().CreateTenant(ctx, first))
	require.NoError(t, s.Tenants().CreateTenant(ctx, second))

	clash := domain.Tenant{ID: idx.New().String(), Name: "Acme 2", Slug: "acme", CreatedAt: now, UpdatedAt: now}
	require.ErrorIs(t, s.Tenants().CreateTenant(ctx, clash), store.ErrAlreadyExists)

	_, err := s.Memberships().GetEarliestMembership(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Later membership is inserted first; ordering is by created_at.
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), TenantID: second.ID, UserID: u.ID, Role: domain.RoleMember, CreatedAt: now.Add(time.Hour),
	}))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), TenantID: first.ID, UserID: u.ID, Role: domain.RoleOwner, CreatedAt: now,
	}))

	m, err := s.Memberships().GetEarliestMembership(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, m.TenantID)
	require.Equal(t, domain.RoleOwner, m.Role)

	err = s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), TenantID: first.ID, UserID: u.ID, Role: domain.RoleAdmin, CreatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	u := seedUser(t, s, "carol@example.com", now)

	mk := func(hash string, expires time.Time) domain.RefreshToken {
		rt := domain.RefreshToken{
			ID: idx.New().String(), UserID: u.ID, TokenHash: hash, ExpiresAt: expires,
			CreatedByIP: "10.0.0.1", UserAgent: "test", CreatedAt: now,
		}
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))
		return rt
	}

	a := mk("hash-a", now.Add(time.Hour))
	b := mk("hash-b", now.Add(time.Hour))
	old := mk("hash-old", now.Add(-30*24*time.Hour))

	require.ErrorIs(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "hash-a", ExpiresAt: now, CreatedAt: now,
	}), store.ErrAlreadyExists)

	ok, err := s.RefreshTokens().RevokeRefreshToken(ctx, a.ID, now, "10.0.0.2", b.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.RefreshTokens().RevokeRefreshToken(ctx, a.ID, now, "10.0.0.3", "other")
	require.NoError(t, err)
	require.False(t, ok)

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-a")
	require.NoError(t, err)
	require.Equal(t, domain.RefreshTokenRotated, got.State(now))
	require.Equal(t, b.ID, got.ReplacedBy)
	require.Equal(t, "10.0.0.2", got.RevokedByIP)

	n, err := s.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID, now, "10.0.0.4")
	require.NoError(t, err)
	require.EqualValues(t, 2, n, "b and old were still unrevoked")

	ok, err = s.RefreshTokens().RevokeRefreshTokenByHash(ctx, "hash-b", now, "")
	require.NoError(t, err)
	require.False(t, ok)

	n, err = s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, old.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.RefreshTokens().ListUserRefreshTokens(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestOneTimeTokens_SeparateTables(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	u := seedUser(t, s, "dave@example.com", now)

	verify := s.OneTimeTokens(domain.PurposeEmailVerification)
	reset := s.OneTimeTokens(domain.PurposePasswordReset)

	tok := domain.OneTimeToken{ID: idx.New().String(), UserID: u.ID, TokenHash: "ott", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, verify.CreateToken(ctx, tok))

	_, err := reset.GetTokenByHash(ctx, "ott")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := verify.GetTokenByHash(ctx, "ott")
	require.NoError(t, err)
	require.True(t, got.Usable(now))

	ok, err := verify.MarkTokenUsed(ctx, tok.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = verify.MarkTokenUsed(ctx, tok.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	n, err := verify.DeleteExpiredTokens(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestInvitations(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	owner := seedUser(t, s, "owner@example.com", now)
	tenant := domain.Tenant{ID: idx.New().String(), Name: "Acme", Slug: "acme", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))

	inv := domain.Invitation{
		ID: idx.New().String(), TenantID: tenant.ID, Email: "new@example.com", Role: domain.RoleAdmin,
		TokenHash: "inv", InvitedBy: owner.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	got, err := s.Invitations().GetInvitationByHash(ctx, "inv")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.True(t, got.Usable(now))

	ok, err := s.Invitations().MarkInvitationAccepted(ctx, inv.ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Invitations().MarkInvitationAccepted(ctx, inv.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	// Accepted invitations are kept as an audit trail.
	n, err := s.Invitations().DeleteExpiredInvitations(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWithTx_RollbackLeavesNoRows(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "eve@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
		}))
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().GetUserByEmail(ctx, "eve@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
