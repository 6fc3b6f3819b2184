// Package model holds the shared data model for pages, widgets, links and
// solve records. Types here are plain data: they carry no behavior beyond
// constructors and deep copies, so they can cross the persistence boundary
// without surprises.
package model

import (
	"encoding/json"
	"time"
)

// WidgetTypeID identifies a widget type registered in the system.
type WidgetTypeID = string

// WidgetCategory groups widget types in the palette.
type WidgetCategory string

const (
	CategoryTimer    WidgetCategory = "timer"
	CategoryDisplay  WidgetCategory = "display"
	CategoryStats    WidgetCategory = "stats"
	CategoryCharts   WidgetCategory = "charts"
	CategoryUtility  WidgetCategory = "utility"
	CategoryTraining WidgetCategory = "training"
)

// GridPosition is a widget instance's placement on the page grid.
type GridPosition struct {
	X      int `json:"x"` // column start, 0-indexed
	Y      int `json:"y"` // row start, 0-indexed
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size is a width/height pair in grid cells.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WidgetConfig is the open key-value configuration of a widget instance.
// Base keys shared by all widgets: "title", "showHeader", "borderless".
type WidgetConfig map[string]any

// Clone returns a deep copy of the config.
func (c WidgetConfig) Clone() WidgetConfig {
	if c == nil {
		return nil
	}
	b, _ := json.Marshal(c)
	out := WidgetConfig{}
	_ = json.Unmarshal(b, &out)
	return out
}

// Merge returns the config with the partial applied on top, key by key.
func (c WidgetConfig) Merge(partial WidgetConfig) WidgetConfig {
	out := c.Clone()
	if out == nil {
		out = WidgetConfig{}
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// WidgetInstance is one placement of a widget type on a page.
type WidgetInstance struct {
	ID        string       `json:"id"`     // UUID
	TypeID    WidgetTypeID `json:"typeId"` // resolved against the registry
	Position  GridPosition `json:"position"`
	Config    WidgetConfig `json:"config"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy of the instance.
func (w WidgetInstance) Clone() WidgetInstance {
	out := w
	out.Config = w.Config.Clone()
	return out
}

// FieldType enumerates the config schema field kinds.
type FieldType string

const (
	FieldBoolean     FieldType = "boolean"
	FieldNumber      FieldType = "number"
	FieldString      FieldType = "string"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
	FieldColor       FieldType = "color"
)

// FieldOption is one choice of a select/multiselect field.
type FieldOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ConfigField describes one entry of a widget's config editor.
type ConfigField struct {
	Key         string        `json:"key"`
	Label       string        `json:"label"`
	Type        FieldType     `json:"type"`
	Default     any           `json:"default"`
	Options     []FieldOption `json:"options,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Step        *float64      `json:"step,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Description string        `json:"description,omitempty"`
}

// ConfigSchema drives the generated config UI for a widget type.
type ConfigSchema struct {
	Fields []ConfigField `json:"fields"`
}

// WidgetTypeMetadata describes a kind of widget for the registry and palette.
type WidgetTypeMetadata struct {
	ID            WidgetTypeID   `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Icon          string         `json:"icon"`
	Category      WidgetCategory `json:"category"`
	DefaultConfig WidgetConfig   `json:"defaultConfig"`
	DefaultSize   Size           `json:"defaultSize"`
	MinSize       *Size          `json:"minSize,omitempty"`
	MaxSize       *Size          `json:"maxSize,omitempty"`
	ConfigSchema  *ConfigSchema  `json:"configSchema,omitempty"`
}
