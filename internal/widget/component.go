// Package widget implements the widget type registry and the runtime that
// mounts widget instances onto a live page. Widget types are registered once
// at startup; pages reference them by type id and degrade gracefully when a
// referenced type is missing.
package widget

import (
	"context"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/scramble"
	"cubedeck/internal/store"
	"cubedeck/internal/widgetstate"
)

// Env is everything a mounted widget instance gets to work with. The Events
// scope is private to the instance and is closed for it on unmount, so
// components never need to track their own subscriptions.
type Env struct {
	InstanceID string
	Config     model.WidgetConfig
	EditMode   bool
	Filter     *model.SolveFilter

	Events    *bus.Scope
	State     *widgetstate.Store
	Store     *store.Store
	Scrambles scramble.Generator
}

// Component is a live widget instance. Mount is called once with the
// instance's environment; Unmount releases whatever Mount acquired beyond
// the event scope, which the runtime closes itself.
type Component interface {
	Mount(ctx context.Context, env Env) error
	Unmount()
}

// Factory builds a fresh component per mounted instance.
type Factory func() Component

// Registration ties a widget type's metadata to its component factory. A nil
// ConfigComponent means the config editor is generated from the metadata's
// config schema.
type Registration struct {
	Metadata        model.WidgetTypeMetadata
	Component       Factory
	ConfigComponent Factory
}
