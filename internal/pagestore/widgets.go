package pagestore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cubedeck/internal/model"
)

// NewWidgetInstance builds a widget instance of the given type at a grid
// position, with fresh identity and timestamps.
func (s *Store) NewWidgetInstance(typeID model.WidgetTypeID, pos model.GridPosition, cfg model.WidgetConfig) model.WidgetInstance {
	now := s.now()
	if cfg == nil {
		cfg = model.WidgetConfig{}
	}
	return model.WidgetInstance{
		ID:        uuid.NewString(),
		TypeID:    typeID,
		Position:  pos,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddWidget appends the widget to the page's working copy. Unknown page ids
// are a no-op.
func (s *Store) AddWidget(pageID string, w model.WidgetInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.findLocked(pageID)
	if !ok {
		return
	}
	page.Widgets = append(page.Widgets, w)
	page.Touch(s.now())
}

// WidgetUpdate carries the widget fields an update may change.
type WidgetUpdate struct {
	Position *model.GridPosition
	Config   model.WidgetConfig // replaces wholesale when non-nil
}

// UpdateWidget applies the partial update to the widget's working copy.
// Unknown page or widget ids are a no-op.
func (s *Store) UpdateWidget(pageID, widgetID string, upd WidgetUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.findLocked(pageID)
	if !ok {
		return
	}
	w, ok := page.Widget(widgetID)
	if !ok {
		return
	}
	if upd.Position != nil {
		w.Position = *upd.Position
	}
	if upd.Config != nil {
		w.Config = upd.Config.Clone()
	}
	now := s.now()
	w.UpdatedAt = now
	page.Touch(now)
}

// UpdateWidgetConfig merges the partial config into the widget and persists
// the whole page immediately, so config edits survive a crash between
// explicit saves.
func (s *Store) UpdateWidgetConfig(ctx context.Context, pageID, widgetID string, partial model.WidgetConfig) error {
	s.mu.Lock()
	page, ok := s.findLocked(pageID)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	w, ok := page.Widget(widgetID)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	w.Config = w.Config.Merge(partial)
	now := s.now()
	w.UpdatedAt = now
	page.Touch(now)
	s.mu.Unlock()

	return s.SavePage(ctx, pageID)
}

// RemoveWidget drops the widget from the page's working copy. Unknown ids
// are a no-op.
func (s *Store) RemoveWidget(pageID, widgetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.findLocked(pageID)
	if !ok {
		return
	}
	for i := range page.Widgets {
		if page.Widgets[i].ID == widgetID {
			page.Widgets = append(page.Widgets[:i], page.Widgets[i+1:]...)
			page.Touch(s.now())
			return
		}
	}
}

// SavePage persists the page's working copy. The page is cloned first so the
// durable layer never holds live cache references; the clone's normalization
// matches what a reload produces.
func (s *Store) SavePage(ctx context.Context, pageID string) error {
	s.mu.Lock()
	page, ok := s.findLocked(pageID)
	var clone *model.Page
	var savedAt time.Time
	if ok {
		savedAt = s.now()
		page.Touch(savedAt)
		clone = page.Clone()
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.db.PutPage(ctx, clone)
}

// ReloadPage discards the page's working copy in favor of what storage
// holds. Pages missing from storage are left untouched.
func (s *Store) ReloadPage(ctx context.Context, pageID string) error {
	saved, ok, err := s.db.GetPage(ctx, pageID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	for i, p := range s.pages {
		if p.ID == pageID {
			s.pages[i] = saved
			break
		}
	}
	s.mu.Unlock()
	return nil
}
