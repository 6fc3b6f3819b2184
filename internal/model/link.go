package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkScope says whether a link spans all pages or one page.
type LinkScope string

const (
	LinkScopeGlobal LinkScope = "global"
	LinkScopePage   LinkScope = "page"
)

// DefaultGlobalLinkID is the reserved id of the built-in global link.
const DefaultGlobalLinkID = "global-default"

// Link partitions event traffic between groups of co-located widgets. It is
// purely a filtering key for the page event bus.
type Link struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Scope     LinkScope `json:"scope"`
	CreatedAt time.Time `json:"createdAt"`
	Color     string    `json:"color,omitempty"`
}

// NewLink creates a link with a fresh UUID.
func NewLink(name string, scope LinkScope) Link {
	return Link{
		ID:        uuid.NewString(),
		Name:      name,
		Scope:     scope,
		CreatedAt: time.Now(),
	}
}

// DefaultGlobalLink returns the built-in global communication channel.
func DefaultGlobalLink() Link {
	return Link{ID: DefaultGlobalLinkID, Name: "Global", Scope: LinkScopeGlobal}
}
