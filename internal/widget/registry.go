package widget

import (
	"sort"
	"sync"

	"cubedeck/internal/logx"
	"cubedeck/internal/model"
)

var widgetLogger = logx.GetScope("widget")

// Registry maps widget type ids to their registrations.
type Registry struct {
	mu            sync.RWMutex
	registrations map[model.WidgetTypeID]Registration
	order         []model.WidgetTypeID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{registrations: map[model.WidgetTypeID]Registration{}}
}

// Register adds a widget type. Re-registering an existing id overwrites the
// previous registration with a warning; registration order is preserved for
// listing.
func (r *Registry) Register(reg Registration) {
	id := reg.Metadata.ID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[id]; exists {
		widgetLogger.Sugar().Warnf("widget %q is already registered, overwriting", id)
	} else {
		r.order = append(r.order, id)
	}
	r.registrations[id] = reg
}

// Unregister removes a widget type. Removing an unknown id only warns.
func (r *Registry) Unregister(typeID model.WidgetTypeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[typeID]; !exists {
		widgetLogger.Sugar().Warnf("widget %q is not registered", typeID)
		return
	}
	delete(r.registrations, typeID)
	for i, id := range r.order {
		if id == typeID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get looks up a registration by type id.
func (r *Registry) Get(typeID model.WidgetTypeID) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.registrations[typeID]
	return reg, ok
}

// GetAll returns every registration in registration order.
func (r *Registry) GetAll() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.registrations[id])
	}
	return out
}

// GetByCategory returns the registrations of one palette category, sorted by
// name for stable palette rendering.
func (r *Registry) GetByCategory(category model.WidgetCategory) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Registration{}
	for _, id := range r.order {
		if reg := r.registrations[id]; reg.Metadata.Category == category {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.Name < out[j].Metadata.Name
	})
	return out
}

// Has reports whether a type id is registered.
func (r *Registry) Has(typeID model.WidgetTypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registrations[typeID]
	return ok
}

// Len reports the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}
