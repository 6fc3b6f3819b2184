package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"cubedeck/internal/model"
)

// AddSolve inserts a solve and returns its id. The legacy event column is
// kept in sync with the scramble type for pre-v2 readers.
func (s *Store) AddSolve(ctx context.Context, solve *model.Solve) (int64, error) {
	if solve.Timestamp.IsZero() {
		solve.Timestamp = time.Now().UTC()
	}
	if solve.Penalty == "" {
		solve.Penalty = model.PenaltyNone
	}
	tags := solve.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, s.q(`INSERT INTO solves
			(duration, scramble, event, scramble_type, session_id, page_id,
			 tags, timestamp, penalty, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		solve.Duration, solve.Scramble, solve.ScrambleType, solve.ScrambleType,
		solve.SessionID, nullStr(solve.PageID), string(tagsJSON),
		solve.Timestamp, string(solve.Penalty), nullStr(solve.Comment)).Scan(&id)
	if err != nil {
		return 0, err
	}
	solve.ID = id
	return id, nil
}

const solveColumns = `id, duration, scramble, scramble_type, session_id,
	page_id, tags, timestamp, penalty, comment`

// GetSolve fetches one solve. ok=false for an unknown id.
func (s *Store) GetSolve(ctx context.Context, id int64) (*model.Solve, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+solveColumns+` FROM solves WHERE id = ?`), id)
	solve, err := scanSolve(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return solve, true, nil
}

// SolveUpdate carries the fields an update may change; nil means keep.
type SolveUpdate struct {
	Penalty   *model.Penalty
	Comment   *string
	Tags      *[]string
	SessionID *int64
}

// UpdateSolve applies the partial update. Unknown ids are a no-op.
func (s *Store) UpdateSolve(ctx context.Context, id int64, upd SolveUpdate) error {
	solve, ok, err := s.GetSolve(ctx, id)
	if err != nil || !ok {
		return err
	}
	if upd.Penalty != nil {
		solve.Penalty = *upd.Penalty
	}
	if upd.Comment != nil {
		solve.Comment = *upd.Comment
	}
	if upd.Tags != nil {
		solve.Tags = *upd.Tags
	}
	if upd.SessionID != nil {
		solve.SessionID = *upd.SessionID
	}
	tagsJSON, err := json.Marshal(lo.Ternary(solve.Tags != nil, solve.Tags, []string{}))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`UPDATE solves SET
			penalty = ?, comment = ?, tags = ?, session_id = ?
		WHERE id = ?`),
		string(solve.Penalty), nullStr(solve.Comment), string(tagsJSON),
		solve.SessionID, id)
	return err
}

// DeleteSolve removes a solve; unknown ids are a no-op.
func (s *Store) DeleteSolve(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM solves WHERE id = ?`), id)
	return err
}

// SolvesBySession returns a session's solves, oldest first.
func (s *Store) SolvesBySession(ctx context.Context, sessionID int64) ([]*model.Solve, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+solveColumns+` FROM solves WHERE session_id = ? ORDER BY timestamp ASC, id ASC`),
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSolves(rows)
}

// SolvesByPage returns the solves recorded on a page, oldest first.
func (s *Store) SolvesByPage(ctx context.Context, pageID string) ([]*model.Solve, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+solveColumns+` FROM solves WHERE page_id = ? ORDER BY timestamp ASC, id ASC`),
		pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSolves(rows)
}

// RecentSolves returns up to count of the session's newest solves, newest
// first.
func (s *Store) RecentSolves(ctx context.Context, sessionID int64, count int) ([]*model.Solve, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+solveColumns+` FROM solves WHERE session_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`),
		sessionID, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSolves(rows)
}

// QuerySolves applies a widget solve filter. Session and page narrowing run
// in SQL; scramble-type and tag narrowing run over the fetched rows, which
// stays cheap at local-database cardinality.
func (s *Store) QuerySolves(ctx context.Context, f model.SolveFilter, limit int) ([]*model.Solve, error) {
	query := `SELECT ` + solveColumns + ` FROM solves`
	var (
		where []string
		args  []any
	)
	if f.PageID != "" {
		where = append(where, "page_id = ?")
		args = append(args, f.PageID)
	}
	if len(f.SessionIDs) == 1 {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionIDs[0])
	}
	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	solves, err := collectSolves(rows)
	if err != nil {
		return nil, err
	}

	if len(f.SessionIDs) > 1 {
		solves = lo.Filter(solves, func(sv *model.Solve, _ int) bool {
			return lo.Contains(f.SessionIDs, sv.SessionID)
		})
	}
	if len(f.ScrambleTypes) > 0 {
		solves = lo.Filter(solves, func(sv *model.Solve, _ int) bool {
			return lo.Contains(f.ScrambleTypes, sv.ScrambleType)
		})
	}
	if len(f.Tags) > 0 {
		solves = lo.Filter(solves, func(sv *model.Solve, _ int) bool {
			return lo.Some(sv.Tags, f.Tags)
		})
	}
	if f.DateRange != nil {
		solves = lo.Filter(solves, func(sv *model.Solve, _ int) bool {
			if f.DateRange.Start != nil && sv.Timestamp.Before(*f.DateRange.Start) {
				return false
			}
			if f.DateRange.End != nil && sv.Timestamp.After(*f.DateRange.End) {
				return false
			}
			return true
		})
	}
	return solves, nil
}

func scanSolve(row rowScanner) (*model.Solve, error) {
	var (
		solve        model.Solve
		scrambleType sql.NullString
		pageID       sql.NullString
		tagsJSON     sql.NullString
		penalty      string
		comment      sql.NullString
	)
	err := row.Scan(&solve.ID, &solve.Duration, &solve.Scramble, &scrambleType,
		&solve.SessionID, &pageID, &tagsJSON, &solve.Timestamp, &penalty, &comment)
	if err != nil {
		return nil, err
	}
	solve.ScrambleType = scrambleType.String
	solve.PageID = pageID.String
	solve.Penalty = model.Penalty(penalty)
	solve.Comment = comment.String
	solve.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &solve.Tags); err != nil {
			return nil, err
		}
	}
	return &solve, nil
}

func collectSolves(rows *sql.Rows) ([]*model.Solve, error) {
	solves := []*model.Solve{}
	for rows.Next() {
		solve, err := scanSolve(rows)
		if err != nil {
			return nil, err
		}
		solves = append(solves, solve)
	}
	return solves, rows.Err()
}
