package model

import (
	"encoding/json"
	"time"
)

// GridConfig is the page-level grid geometry. All values are positive.
type GridConfig struct {
	Columns   int `json:"columns"`
	RowHeight int `json:"rowHeight"` // pixels
	Gap       int `json:"gap"`       // pixels
	Padding   int `json:"padding"`   // pixels
}

// DefaultGridConfig returns the grid used for new pages.
func DefaultGridConfig() GridConfig {
	return GridConfig{Columns: 12, RowHeight: 80, Gap: 16, Padding: 16}
}

// DateRange bounds a solve filter in time. Either side may be nil.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// SolveFilter narrows the solve set a widget operates on.
type SolveFilter struct {
	PageID        string     `json:"pageId,omitempty"`
	ScrambleTypes []string   `json:"scrambleTypes,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	SessionIDs    []int64    `json:"sessionIds,omitempty"`
	DateRange     *DateRange `json:"dateRange,omitempty"`
}

// Page is a user-configurable canvas holding a grid of widget instances.
type Page struct {
	ID          string `json:"id"` // UUID
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`

	// IsTemplate marks read-only predefined starting points.
	IsTemplate bool `json:"isTemplate"`
	IsEditable bool `json:"isEditable"`
	SortOrder  int  `json:"sortOrder"`

	GridConfig GridConfig       `json:"gridConfig"`
	Widgets    []WidgetInstance `json:"widgets"`

	DefaultFilter       *SolveFilter `json:"defaultFilter,omitempty"`
	DefaultScrambleType string       `json:"defaultScrambleType,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone materializes a plain deep copy of the page. The persistence layer
// always receives clones so live cache references are never serialized
// directly. The JSON round trip mirrors what a reload from storage produces,
// so nested config values are normalized the same way in both paths; the
// typed time fields survive it by construction.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	b, _ := json.Marshal(p)
	out := &Page{}
	_ = json.Unmarshal(b, out)
	return out
}

// Widget returns the widget instance with the given id, if present.
func (p *Page) Widget(widgetID string) (*WidgetInstance, bool) {
	for i := range p.Widgets {
		if p.Widgets[i].ID == widgetID {
			return &p.Widgets[i], true
		}
	}
	return nil, false
}

// Touch refreshes the page's updated timestamp.
func (p *Page) Touch(now time.Time) { p.UpdatedAt = now }
