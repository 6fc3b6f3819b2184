// Package db opens the durable database used by the persistence layer.
//
// The default backend is an embedded SQLite file under the data directory,
// matching the app's local-first design. A postgres:// DSN switches to
// PostgreSQL via pgx for self-hosted installs.
package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for PostgreSQL DSNs
	_ "modernc.org/sqlite"             // embedded sqlite driver

	"cubedeck/internal/config"
	"cubedeck/internal/logx"
)

var dbLogger = logx.GetScope("db")

// Dialect identifies the SQL dialect the persistence layer should speak.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var baseDB *sql.DB

// Open opens the database described by cfg and returns the handle, its
// dialect, and a closer. With an empty DB.URL it opens cubedeck.db under the
// data directory.
func Open(cfg *config.Config) (*sql.DB, Dialect, func(), error) {
	url := cfg.DB.URL
	dialect := DialectSQLite
	driver := "sqlite"

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		dialect = DialectPostgres
		driver = "pgx"
	case url == "":
		if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
			return nil, dialect, func() {}, err
		}
		path := filepath.Join(cfg.Data.Dir, "cubedeck.db")
		url = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	sqldb, err := sql.Open(driver, url)
	if err != nil {
		return nil, dialect, func() {}, err
	}
	if dialect == DialectSQLite {
		// sqlite allows a single writer; keep the pool at one connection.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
	} else {
		sqldb.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	baseDB = sqldb

	closer := func() {
		baseDB = nil
		if err := sqldb.Close(); err != nil {
			dbLogger.Sugar().Errorf("close db: %v", err)
		}
	}
	return sqldb, dialect, closer, nil
}

// UpdatePool updates DB pool settings at runtime.
func UpdatePool(maxOpen, maxIdle int) {
	if baseDB == nil {
		return
	}
	if maxOpen > 0 {
		baseDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		baseDB.SetMaxIdleConns(maxIdle)
	}
}
