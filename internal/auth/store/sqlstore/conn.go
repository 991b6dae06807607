package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/docuchat/docuchat/internal/auth/store"
)

// conn rebinds every query for the active dialect before running it.
type conn struct {
	db      DBTX
	dialect Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.dialect.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.dialect.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.dialect.Rebind(query), args...)
}

// execAffected runs query and returns the number of rows it touched.
func (c conn) execAffected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert maps unique violations to store.ErrAlreadyExists.
func (c conn) insert(ctx context.Context, query string, args ...any) error {
	_, err := c.exec(ctx, query, args...)
	if err != nil && c.dialect.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// insertOrSkip runs an INSERT ... ON CONFLICT DO NOTHING and reports a skipped
// row as store.ErrAlreadyExists. Unlike a constraint error this leaves a
// Postgres transaction usable.
func (c conn) insertOrSkip(ctx context.Context, query string, args ...any) error {
	n, err := c.execAffected(ctx, query, args...)
	if err != nil {
		if c.dialect.IsUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

// utc normalises timestamps before they are bound so text-encoded SQLite
// columns compare in chronological order.
func utc(t time.Time) time.Time { return t.UTC() }
