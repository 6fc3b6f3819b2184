package store

import (
	"context"
	"database/sql"
	"fmt"

	"cubedeck/internal/db"
)

// Schema history:
//
//	v1: solves keyed by a WCA "event" code, sessions. The original local
//	    database layout.
//	v2: pages and tags collections; solves gain scramble_type (backfilled
//	    from event), page_id and tags (backfilled to []); sessions gain
//	    default_page_id and archived.
//
// Migrations run inside one transaction each and record their version in
// schema_version, so a half-applied step never counts as done.
var migrations = []func(ctx context.Context, tx *sql.Tx, dialect db.Dialect) error{
	migrateV1,
	migrateV2,
}

// Migrate brings the schema up to the latest version.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for v := current; v < len(migrations); v++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := migrations[v](ctx, tx, s.dialect); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if err := setVersion(ctx, tx, s, v+1); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		storeLogger.Sugar().Infof("schema migrated to v%d", v+1)
	}
	return nil
}

// SchemaVersion reports the current schema version, 0 for a fresh database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func setVersion(ctx context.Context, tx *sql.Tx, s *Store, v int) error {
	res, err := tx.ExecContext(ctx, s.q(`UPDATE schema_version SET version = ?`), v)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx, s.q(`INSERT INTO schema_version (version) VALUES (?)`), v)
	}
	return err
}

func serialPK(dialect db.Dialect) string {
	if dialect == db.DialectPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func migrateV1(ctx context.Context, tx *sql.Tx, dialect db.Dialect) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS solves (
			id %s,
			duration BIGINT NOT NULL,
			scramble TEXT NOT NULL,
			event TEXT NOT NULL,
			session_id BIGINT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			penalty TEXT NOT NULL DEFAULT 'none',
			comment TEXT
		)`, serialPK(dialect)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sessions (
			id %s,
			name TEXT NOT NULL,
			event TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`, serialPK(dialect)),
		`CREATE INDEX IF NOT EXISTS idx_solves_session ON solves(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_solves_timestamp ON solves(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_event ON sessions(event)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func migrateV2(ctx context.Context, tx *sql.Tx, dialect db.Dialect) error {
	stmts := []string{
		`ALTER TABLE solves ADD COLUMN scramble_type TEXT`,
		`ALTER TABLE solves ADD COLUMN page_id TEXT`,
		`ALTER TABLE solves ADD COLUMN tags TEXT`,
		`ALTER TABLE sessions ADD COLUMN default_page_id TEXT`,
		`ALTER TABLE sessions ADD COLUMN archived BOOLEAN NOT NULL DEFAULT false`,
		// Backfill so no existing record violates the new schema: the
		// scramble type defaults to the legacy event code, tags to the
		// empty list.
		`UPDATE solves SET scramble_type = event WHERE scramble_type IS NULL`,
		`UPDATE solves SET tags = '[]' WHERE tags IS NULL`,
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			description TEXT,
			is_template BOOLEAN NOT NULL DEFAULT false,
			is_editable BOOLEAN NOT NULL DEFAULT true,
			sort_order INTEGER NOT NULL DEFAULT 0,
			grid_config TEXT NOT NULL,
			widgets TEXT NOT NULL,
			default_filter TEXT,
			default_scramble_type TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tags (
			id %s,
			name TEXT NOT NULL UNIQUE,
			color TEXT,
			created_at TIMESTAMP NOT NULL
		)`, serialPK(dialect)),
		`CREATE INDEX IF NOT EXISTS idx_solves_page ON solves(page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_template ON pages(is_template, sort_order)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
