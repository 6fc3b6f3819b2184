// Package scramble holds the scramble type catalog and sequence generation.
// Categories group related scramble types; each type maps to a WCA event
// code.
package scramble

import "github.com/samber/lo"

// Type is one selectable scramble variant.
type Type struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventCode   string `json:"eventCode"`
	Description string `json:"description,omitempty"`
}

// Category groups related scramble types.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Types []Type `json:"types"`
}

const (
	DefaultCategoryID = "wca"
	DefaultTypeID     = "333"
	DefaultEventCode  = "333"
)

// WCACategory holds the official World Cube Association events.
var WCACategory = Category{
	ID:   "wca",
	Name: "WCA",
	Types: []Type{
		{ID: "222", Name: "2x2x2", EventCode: "222"},
		{ID: "333", Name: "3x3x3", EventCode: "333"},
		{ID: "444", Name: "4x4x4", EventCode: "444"},
		{ID: "555", Name: "5x5x5", EventCode: "555"},
		{ID: "666", Name: "6x6x6", EventCode: "666"},
		{ID: "777", Name: "7x7x7", EventCode: "777"},
		{ID: "333bf", Name: "3x3 Blindfolded", EventCode: "333bf"},
		{ID: "333oh", Name: "3x3 One-Handed", EventCode: "333oh"},
		{ID: "clock", Name: "Clock", EventCode: "clock"},
		{ID: "minx", Name: "Megaminx", EventCode: "minx"},
		{ID: "pyram", Name: "Pyraminx", EventCode: "pyram"},
		{ID: "skewb", Name: "Skewb", EventCode: "skewb"},
		{ID: "sq1", Name: "Square-1", EventCode: "sq1"},
	},
}

// Categories lists every available scramble category.
var Categories = []Category{WCACategory}

// FindCategory looks up a category by id.
func FindCategory(categoryID string) (Category, bool) {
	return lo.Find(Categories, func(c Category) bool { return c.ID == categoryID })
}

// FindType looks up a scramble type within a category.
func FindType(categoryID, typeID string) (Type, bool) {
	cat, ok := FindCategory(categoryID)
	if !ok {
		return Type{}, false
	}
	return lo.Find(cat.Types, func(t Type) bool { return t.ID == typeID })
}

// EventCode resolves a category/type pair to its event code, falling back to
// the 3x3x3 default when the pair is unknown.
func EventCode(categoryID, typeID string) string {
	if t, ok := FindType(categoryID, typeID); ok {
		return t.EventCode
	}
	return DefaultEventCode
}

// TypesForCategory returns the types of a category, empty for unknown ids.
func TypesForCategory(categoryID string) []Type {
	cat, ok := FindCategory(categoryID)
	if !ok {
		return []Type{}
	}
	return cat.Types
}
