package store

import (
	"context"
	"database/sql"
	"time"

	"cubedeck/internal/model"
)

// CreateTag inserts a tag and returns its id. Names are unique; re-creating
// an existing name returns the existing tag's id.
func (s *Store) CreateTag(ctx context.Context, tag *model.Tag) (int64, error) {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id FROM tags WHERE name = ?`), tag.Name).Scan(&id)
	if err == nil {
		tag.ID = id
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = s.db.QueryRowContext(ctx, s.q(`INSERT INTO tags (name, color, created_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		tag.Name, nullStr(tag.Color), tag.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	tag.ID = id
	return id, nil
}

// ListTags returns every tag in name order.
func (s *Store) ListTags(ctx context.Context) ([]*model.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*model.Tag{}
	for rows.Next() {
		var (
			tag   model.Tag
			color sql.NullString
		)
		if err := rows.Scan(&tag.ID, &tag.Name, &color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tag.Color = color.String
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// DeleteTag removes the tag row. Solves keep the name in their tag lists;
// tags are labels, not foreign keys.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM tags WHERE id = ?`), id)
	return err
}
