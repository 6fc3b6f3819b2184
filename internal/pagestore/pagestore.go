// Package pagestore keeps the live page collection: an in-memory working
// set over the durable page table, plus the current-page selection and edit
// mode. Mutating operations touch timestamps; only the operations documented
// as persisting write through to storage, the rest change the working set
// until SavePage is called.
package pagestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"cubedeck/internal/logx"
	"cubedeck/internal/model"
	"cubedeck/internal/store"
)

var pageLogger = logx.GetScope("pagestore")

// DefaultPageIcon is the icon new pages start with.
const DefaultPageIcon = "DocumentOutline"

// Store is the page working set. All methods are safe for concurrent use.
type Store struct {
	db *store.Store

	mu            sync.Mutex
	pages         []*model.Page
	currentPageID string
	editMode      bool
	loading       bool

	now func() time.Time
}

// New builds an empty page store over the durable layer. Call LoadPages to
// populate it.
func New(db *store.Store) *Store {
	return &Store{db: db, now: time.Now}
}

// LoadPages replaces the working set with everything in storage. The loading
// flag is cleared on every path out.
func (s *Store) LoadPages(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	pages, err := s.db.ListPages(ctx)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.pages = pages
	}
	s.mu.Unlock()
	return err
}

// Loading reports whether a LoadPages call is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CreatePage makes a new editable user page at the end of the page list and
// persists it. The icon defaults when empty.
func (s *Store) CreatePage(ctx context.Context, name, icon string) (*model.Page, error) {
	if icon == "" {
		icon = DefaultPageIcon
	}
	now := s.now()

	s.mu.Lock()
	maxSort := 0
	for _, p := range s.pages {
		if p.SortOrder > maxSort {
			maxSort = p.SortOrder
		}
	}
	s.mu.Unlock()

	page := &model.Page{
		ID:         uuid.NewString(),
		Name:       name,
		Icon:       icon,
		IsTemplate: false,
		IsEditable: true,
		SortOrder:  maxSort + 1,
		GridConfig: model.DefaultGridConfig(),
		Widgets:    []model.WidgetInstance{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.PutPage(ctx, page); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	return page, nil
}

// PageUpdate carries the page fields an update may change; nil means keep.
type PageUpdate struct {
	Name                *string
	Icon                *string
	Description         *string
	SortOrder           *int
	GridConfig          *model.GridConfig
	DefaultFilter       **model.SolveFilter
	DefaultScrambleType *string
}

// UpdatePage applies the partial update to the working set and persists the
// page. Unknown ids are a no-op.
func (s *Store) UpdatePage(ctx context.Context, id string, upd PageUpdate) error {
	page := s.applyUpdate(id, upd)
	if page == nil {
		return nil
	}
	return s.db.PutPage(ctx, page)
}

// UpdatePageLocal applies the partial update to the working set only.
func (s *Store) UpdatePageLocal(id string, upd PageUpdate) {
	s.applyUpdate(id, upd)
}

func (s *Store) applyUpdate(id string, upd PageUpdate) *model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.findLocked(id)
	if !ok {
		return nil
	}
	if upd.Name != nil {
		page.Name = *upd.Name
	}
	if upd.Icon != nil {
		page.Icon = *upd.Icon
	}
	if upd.Description != nil {
		page.Description = *upd.Description
	}
	if upd.SortOrder != nil {
		page.SortOrder = *upd.SortOrder
	}
	if upd.GridConfig != nil {
		page.GridConfig = *upd.GridConfig
	}
	if upd.DefaultFilter != nil {
		page.DefaultFilter = *upd.DefaultFilter
	}
	if upd.DefaultScrambleType != nil {
		page.DefaultScrambleType = *upd.DefaultScrambleType
	}
	page.Touch(s.now())
	return page.Clone()
}

// DeletePage removes the page from storage and the working set. Deleting the
// current page clears the selection.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	if err := s.db.DeletePage(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.pages = lo.Filter(s.pages, func(p *model.Page, _ int) bool { return p.ID != id })
	if s.currentPageID == id {
		s.currentPageID = ""
	}
	s.mu.Unlock()
	return nil
}

// SetCurrentPage selects a page, fetching it into the working set when it is
// not cached yet. An empty id clears the selection; an unknown id selects
// nothing beyond recording the id, matching a navigation to a page that is
// still being created.
func (s *Store) SetCurrentPage(ctx context.Context, id string) error {
	s.mu.Lock()
	s.currentPageID = id
	_, cached := s.findLocked(id)
	s.mu.Unlock()

	if id == "" || cached {
		return nil
	}

	page, ok, err := s.db.GetPage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		pageLogger.Sugar().Warnf("current page %s not found in storage", id)
		return nil
	}

	s.mu.Lock()
	if _, exists := s.findLocked(id); !exists {
		s.pages = append(s.pages, page)
	}
	s.mu.Unlock()
	return nil
}

// CurrentPage returns a copy of the selected page, nil when nothing is
// selected or the selection is not cached.
func (s *Store) CurrentPage() *model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPageID == "" {
		return nil
	}
	page, ok := s.findLocked(s.currentPageID)
	if !ok {
		return nil
	}
	return page.Clone()
}

// CurrentPageID returns the selected page id, empty when none.
func (s *Store) CurrentPageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPageID
}

// SetEditMode flips the dashboard's edit mode.
func (s *Store) SetEditMode(editing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = editing
}

// EditMode reports whether the dashboard is being edited.
func (s *Store) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// UserPages returns copies of the non-template pages sorted by sort order.
func (s *Store) UserPages() []*model.Page {
	return s.filtered(func(p *model.Page) bool { return !p.IsTemplate })
}

// TemplatePages returns copies of the template pages sorted by sort order.
func (s *Store) TemplatePages() []*model.Page {
	return s.filtered(func(p *model.Page) bool { return p.IsTemplate })
}

// Page returns a copy of one cached page.
func (s *Store) Page(id string) (*model.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.findLocked(id)
	if !ok {
		return nil, false
	}
	return page.Clone(), true
}

func (s *Store) filtered(keep func(*model.Page) bool) []*model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Page{}
	for _, p := range s.pages {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (s *Store) findLocked(id string) (*model.Page, bool) {
	for _, p := range s.pages {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
