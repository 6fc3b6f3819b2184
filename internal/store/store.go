// Package store is the durable persistence layer: pages, solves, sessions
// and tags, over an embedded SQLite file by default or PostgreSQL when so
// configured. Missing rows are reported as absent values, not errors.
package store

import (
	"database/sql"
	"strconv"
	"strings"

	"cubedeck/internal/db"
	"cubedeck/internal/logx"
)

var storeLogger = logx.GetScope("store")

// Store wraps the SQL database with typed collection operations.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

// New wraps an open database handle. Call Migrate before first use.
func New(sqldb *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: sqldb, dialect: dialect}
}

// DB exposes the underlying handle for tests and diagnostics.
func (s *Store) DB() *sql.DB { return s.db }

// q rebinds ? placeholders to $n for PostgreSQL; SQLite takes ? as is.
func (s *Store) q(query string) string {
	if s.dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
