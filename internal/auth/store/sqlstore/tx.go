package sqlstore

import (
	"context"
	"database/sql"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
	q  conn
}

func newTx(tx *sql.Tx, dialect Dialect) *txStore {
	return &txStore{
		tx: tx,
		q:  conn{db: tx, dialect: dialect},
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the caller commits or rolls back; the pool stays open

// Ping is a no-op: the connection is already held by the transaction.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) Tenants() store.Tenants             { return &tenantsRepo{q: t.q} }
func (t *txStore) Memberships() store.Memberships     { return &membershipsRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.q} }
func (t *txStore) Invitations() store.Invitations     { return &invitationsRepo{q: t.q} }

func (t *txStore) OneTimeTokens(purpose domain.TokenPurpose) store.OneTimeTokens {
	return newOneTimeTokensRepo(t.q, purpose)
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx

var _ store.Tx = (*txStore)(nil)
