package widget

import (
	"context"
	"sync"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/scramble"
	"cubedeck/internal/store"
	"cubedeck/internal/widgetstate"
)

// Deps are the shared services the runtime hands to every mounted widget.
type Deps struct {
	State     *widgetstate.Store
	Store     *store.Store
	Scrambles scramble.Generator
}

// Runtime mounts one page's widget instances against a page bus. Each
// instance gets its own bus scope, closed for it on unmount.
type Runtime struct {
	registry *Registry
	bus      *bus.Bus
	deps     Deps

	mu      sync.Mutex
	mounted map[string]*mountedWidget
}

type mountedWidget struct {
	component Component
	scope     *bus.Scope
}

// NewRuntime builds a runtime for one page bus.
func NewRuntime(registry *Registry, pageBus *bus.Bus, deps Deps) *Runtime {
	return &Runtime{
		registry: registry,
		bus:      pageBus,
		deps:     deps,
		mounted:  map[string]*mountedWidget{},
	}
}

// Bus returns the page bus the runtime dispatches on.
func (r *Runtime) Bus() *bus.Bus { return r.bus }

// MountPage mounts every widget instance of the page. Instances whose type
// id is not registered are skipped with a warning; the page keeps working
// with the widgets that do resolve.
func (r *Runtime) MountPage(ctx context.Context, page *model.Page) error {
	for _, w := range page.Widgets {
		if err := r.MountWidget(ctx, w, page.DefaultFilter); err != nil {
			return err
		}
	}
	return nil
}

// MountWidget mounts one instance. The instance's config is the type's
// default config with the instance overrides merged on top. Mounting an
// already-mounted id remounts it.
func (r *Runtime) MountWidget(ctx context.Context, w model.WidgetInstance, filter *model.SolveFilter) error {
	reg, ok := r.registry.Get(w.TypeID)
	if !ok {
		widgetLogger.Sugar().Warnf("widget %s references unknown type %q, skipping", w.ID, w.TypeID)
		return nil
	}

	r.UnmountWidget(w.ID)

	component := reg.Component()
	scope := r.bus.NewScope()
	env := Env{
		InstanceID: w.ID,
		Config:     reg.Metadata.DefaultConfig.Merge(w.Config),
		Filter:     filter,
		Events:     scope,
		State:      r.deps.State,
		Store:      r.deps.Store,
		Scrambles:  r.deps.Scrambles,
	}
	if err := component.Mount(ctx, env); err != nil {
		scope.Close()
		return err
	}

	r.mu.Lock()
	r.mounted[w.ID] = &mountedWidget{component: component, scope: scope}
	r.mu.Unlock()
	return nil
}

// UnmountWidget tears down one instance: the component unmounts, then its
// bus scope closes so no subscription outlives it. Unknown ids are a no-op.
func (r *Runtime) UnmountWidget(instanceID string) {
	r.mu.Lock()
	m, ok := r.mounted[instanceID]
	if ok {
		delete(r.mounted, instanceID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	m.component.Unmount()
	m.scope.Close()
}

// MountedCount reports how many instances are currently mounted.
func (r *Runtime) MountedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mounted)
}

// Close unmounts everything. The runtime is done after Close.
func (r *Runtime) Close() {
	r.mu.Lock()
	mounted := r.mounted
	r.mounted = map[string]*mountedWidget{}
	r.mu.Unlock()

	for _, m := range mounted {
		m.component.Unmount()
		m.scope.Close()
	}
}
