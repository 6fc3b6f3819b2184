package store

import (
	"context"
	"database/sql"
	"time"

	"cubedeck/internal/model"
)

const sessionColumns = `id, name, event, default_page_id, archived, created_at`

// CreateSession inserts a session and returns its id.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) (int64, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(`INSERT INTO sessions
			(name, event, default_page_id, archived, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		sess.Name, sess.Event, nullStr(sess.DefaultPageID), sess.Archived,
		sess.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	sess.ID = id
	return id, nil
}

// GetSession fetches one session. ok=false for an unknown id.
func (s *Store) GetSession(ctx context.Context, id int64) (*model.Session, bool, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// ListSessions returns every session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// SessionsByEvent returns the sessions for one WCA event code, newest first.
func (s *Store) SessionsByEvent(ctx context.Context, event string) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+sessionColumns+` FROM sessions WHERE event = ? ORDER BY created_at DESC, id DESC`),
		event)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// GetOrCreateDefaultSession returns the newest unarchived session for the
// event, creating one named after the event when none exists yet.
func (s *Store) GetOrCreateDefaultSession(ctx context.Context, event string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+sessionColumns+` FROM sessions
			WHERE event = ? AND archived = false
			ORDER BY created_at DESC, id DESC LIMIT 1`), event)
	sess, err := scanSession(row)
	if err == nil {
		return sess, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	sess = &model.Session{Name: event, Event: event}
	if _, err := s.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetSessionArchived flips the archived flag; unknown ids are a no-op.
func (s *Store) SetSessionArchived(ctx context.Context, id int64, archived bool) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`UPDATE sessions SET archived = ? WHERE id = ?`), archived, id)
	return err
}

// SetSessionDefaultPage records the page a session opens on.
func (s *Store) SetSessionDefaultPage(ctx context.Context, id int64, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`UPDATE sessions SET default_page_id = ? WHERE id = ?`), nullStr(pageID), id)
	return err
}

// DeleteSession removes the session and its solves.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM solves WHERE session_id = ?`), id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		sess          model.Session
		defaultPageID sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.Name, &sess.Event, &defaultPageID,
		&sess.Archived, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	sess.DefaultPageID = defaultPageID.String
	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]*model.Session, error) {
	sessions := []*model.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
