// Package postgres provides the Postgres backend built on lib/pq.
package postgres

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/docuchat/docuchat/internal/auth/store/sqlstore"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// NewStore opens a pool for dsn (a postgres:// URL or key=value string).
func NewStore(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

// Wrap builds a Store on an already open pool.
func Wrap(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, Dialect{}, Migrate)
}

type Dialect struct{}

// Rebind turns ? placeholders into $1, $2, ...
func (Dialect) Rebind(query string) string {
	n := strings.Count(query, "?")
	if n == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + n*2)
	i := 1
	for _, r := range query {
		if r == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (Dialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
