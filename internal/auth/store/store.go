package store

import (
	"context"
	"errors"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Repositories hang off it as methods so the same
// code runs against the pool or inside a transaction, and so nobody opens a
// transaction inside a transaction by accident.
type Store interface {
	Users() Users
	Tenants() Tenants
	Memberships() Memberships
	RefreshTokens() RefreshTokens
	OneTimeTokens(purpose domain.TokenPurpose) OneTimeTokens
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction. A non-nil error from fn, or a
	// panic, rolls back; otherwise the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the argon2 hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error

	// MarkEmailVerified sets email_verified_at if it is still unset. It
	// reports whether a row changed.
	MarkEmailVerified(ctx context.Context, userID string, now time.Time) (bool, error)
}

type Tenants interface {
	// CreateTenant returns ErrAlreadyExists when the slug is taken. The
	// conflict does not abort an enclosing transaction.
	CreateTenant(ctx context.Context, t domain.Tenant) error
}

type Memberships interface {
	// CreateMembership returns ErrAlreadyExists for a duplicate (tenant, user).
	CreateMembership(ctx context.Context, m domain.Membership) error

	// GetEarliestMembership returns the user's oldest membership; it is the
	// tenant a login binds to.
	GetEarliestMembership(ctx context.Context, userID string) (domain.Membership, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ListUserRefreshTokens returns every record of the user, oldest first.
	ListUserRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// RevokeRefreshToken sets revoked_at, revoked_by_ip and replaced_by
	// only while revoked_at is NULL. false means someone else got there first.
	RevokeRefreshToken(ctx context.Context, id string, now time.Time, ip, replacedBy string) (bool, error)

	// RevokeRefreshTokenByHash is RevokeRefreshToken addressed by digest.
	RevokeRefreshTokenByHash(ctx context.Context, hash string, now time.Time, ip string) (bool, error)

	// RevokeAllUserRefreshTokens revokes every non-revoked record of the user
	// and returns how many changed.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string, now time.Time, ip string) (int64, error)

	// DeleteExpiredRefreshTokens purges records that expired before cutoff.
	DeleteExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// OneTimeTokens backs both email_verification_tokens and
// password_reset_tokens; the table is chosen by Store.OneTimeTokens.
type OneTimeTokens interface {
	CreateToken(ctx context.Context, t domain.OneTimeToken) error

	GetTokenByHash(ctx context.Context, hash string) (domain.OneTimeToken, error)

	// MarkTokenUsed sets used_at only while it is NULL. false means the token
	// was already consumed.
	MarkTokenUsed(ctx context.Context, id string, now time.Time) (bool, error)

	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByHash(ctx context.Context, hash string) (domain.Invitation, error)

	// MarkInvitationAccepted sets accepted_at only while it is NULL.
	MarkInvitationAccepted(ctx context.Context, id string, now time.Time) (bool, error)

	// DeleteExpiredInvitations removes unaccepted invitations past expiry.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}
