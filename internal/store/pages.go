package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cubedeck/internal/model"
)

// PutPage upserts the full page, widgets included. The page's nested
// structures travel as JSON documents; timestamps live in typed columns so
// they round-trip as real time values.
func (s *Store) PutPage(ctx context.Context, p *model.Page) error {
	gridJSON, err := json.Marshal(p.GridConfig)
	if err != nil {
		return fmt.Errorf("marshal grid config: %w", err)
	}
	widgets := p.Widgets
	if widgets == nil {
		widgets = []model.WidgetInstance{}
	}
	widgetsJSON, err := json.Marshal(widgets)
	if err != nil {
		return fmt.Errorf("marshal widgets: %w", err)
	}
	var filterJSON any
	if p.DefaultFilter != nil {
		b, err := json.Marshal(p.DefaultFilter)
		if err != nil {
			return fmt.Errorf("marshal default filter: %w", err)
		}
		filterJSON = string(b)
	}

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE pages SET
			name = ?, icon = ?, description = ?, is_template = ?, is_editable = ?,
			sort_order = ?, grid_config = ?, widgets = ?, default_filter = ?,
			default_scramble_type = ?, created_at = ?, updated_at = ?
		WHERE id = ?`),
		p.Name, p.Icon, nullStr(p.Description), p.IsTemplate, p.IsEditable,
		p.SortOrder, string(gridJSON), string(widgetsJSON), filterJSON,
		nullStr(p.DefaultScrambleType), p.CreatedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO pages
			(id, name, icon, description, is_template, is_editable, sort_order,
			 grid_config, widgets, default_filter, default_scramble_type,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Icon, nullStr(p.Description), p.IsTemplate, p.IsEditable,
		p.SortOrder, string(gridJSON), string(widgetsJSON), filterJSON,
		nullStr(p.DefaultScrambleType), p.CreatedAt, p.UpdatedAt)
	return err
}

const pageColumns = `id, name, icon, description, is_template, is_editable,
	sort_order, grid_config, widgets, default_filter, default_scramble_type,
	created_at, updated_at`

// GetPage fetches one page. ok=false when the id is unknown.
func (s *Store) GetPage(ctx context.Context, id string) (*model.Page, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+pageColumns+` FROM pages WHERE id = ?`), id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// ListPages returns every page ordered by sort order.
func (s *Store) ListPages(ctx context.Context) ([]*model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pageColumns+` FROM pages ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// ListPagesByTemplate returns pages filtered by the template flag, ordered by
// sort order.
func (s *Store) ListPagesByTemplate(ctx context.Context, isTemplate bool) ([]*model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+pageColumns+` FROM pages WHERE is_template = ? ORDER BY sort_order ASC`),
		isTemplate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPages(rows)
}

// DeletePage removes the page row. Deleting an unknown id is a no-op.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM pages WHERE id = ?`), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*model.Page, error) {
	var (
		p            model.Page
		description  sql.NullString
		gridJSON     string
		widgetsJSON  string
		filterJSON   sql.NullString
		scrambleType sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Icon, &description, &p.IsTemplate,
		&p.IsEditable, &p.SortOrder, &gridJSON, &widgetsJSON, &filterJSON,
		&scrambleType, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.DefaultScrambleType = scrambleType.String
	if err := json.Unmarshal([]byte(gridJSON), &p.GridConfig); err != nil {
		return nil, fmt.Errorf("unmarshal grid config: %w", err)
	}
	p.Widgets = []model.WidgetInstance{}
	if err := json.Unmarshal([]byte(widgetsJSON), &p.Widgets); err != nil {
		return nil, fmt.Errorf("unmarshal widgets: %w", err)
	}
	if filterJSON.Valid && filterJSON.String != "" {
		p.DefaultFilter = &model.SolveFilter{}
		if err := json.Unmarshal([]byte(filterJSON.String), p.DefaultFilter); err != nil {
			return nil, fmt.Errorf("unmarshal default filter: %w", err)
		}
	}
	return &p, nil
}

func collectPages(rows *sql.Rows) ([]*model.Page, error) {
	pages := []*model.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
