// Package sqlstore implements store.Store on database/sql. The SQLite and
// Postgres drivers share it and differ only in their Dialect and migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/store"
)

// Dialect captures what differs between the supported databases.
type Dialect interface {
	// Rebind rewrites ? placeholders into the driver's native form.
	Rebind(query string) string

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation(err error) bool
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrator applies the driver's embedded migrations to db.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	q       conn
	migrate Migrator
}

// New wraps an open database. The caller hands ownership of db to the Store.
func New(db *sql.DB, dialect Dialect, migrate Migrator) *Store {
	return &Store{
		db:      db,
		q:       conn{db: db, dialect: dialect},
		migrate: migrate,
	}
}

// DB exposes the underlying pool for tests and diagnostics.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	if err := s.migrate(s.db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.q.dialect), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) Tenants() store.Tenants             { return &tenantsRepo{q: s.q} }
func (s *Store) Memberships() store.Memberships     { return &membershipsRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.q} }
func (s *Store) Invitations() store.Invitations     { return &invitationsRepo{q: s.q} }

func (s *Store) OneTimeTokens(purpose domain.TokenPurpose) store.OneTimeTokens {
	return newOneTimeTokensRepo(s.q, purpose)
}

var _ store.Store = (*Store)(nil)
