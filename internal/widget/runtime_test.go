package widget

import (
	"context"
	"testing"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
)

type nopComponent struct{}

func (c *nopComponent) Mount(context.Context, Env) error { return nil }
func (c *nopComponent) Unmount()                         {}

// subscribingComponent registers a bus handler on mount so scope cleanup can
// be observed from the outside.
type subscribingComponent struct {
	mounted   bool
	unmounted bool
	seenCfg   model.WidgetConfig
}

func (c *subscribingComponent) Mount(_ context.Context, env Env) error {
	c.mounted = true
	c.seenCfg = env.Config
	env.Events.On(bus.SolveSaved, bus.HandlerOf(func(any) {}))
	return nil
}

func (c *subscribingComponent) Unmount() { c.unmounted = true }

func newTestRuntime(t *testing.T, component Component) (*Runtime, *bus.Bus) {
	t.Helper()
	r := NewRegistry()
	reg := testRegistration("probe", model.CategoryUtility)
	reg.Metadata.DefaultConfig = model.WidgetConfig{"title": "Probe", "depth": float64(1)}
	reg.Component = func() Component { return component }
	r.Register(reg)

	pageBus := bus.New()
	return NewRuntime(r, pageBus, Deps{}), pageBus
}

func instance(id, typeID string, cfg model.WidgetConfig) model.WidgetInstance {
	return model.WidgetInstance{ID: id, TypeID: typeID, Config: cfg}
}

func TestMountPageMountsKnownTypes(t *testing.T) {
	component := &subscribingComponent{}
	rt, pageBus := newTestRuntime(t, component)

	page := &model.Page{
		ID: "p1",
		Widgets: []model.WidgetInstance{
			instance("w1", "probe", nil),
			instance("w2", "vanished-type", nil),
		},
	}
	if err := rt.MountPage(context.Background(), page); err != nil {
		t.Fatalf("mount page: %v", err)
	}

	if !component.mounted {
		t.Fatalf("known type must mount")
	}
	if rt.MountedCount() != 1 {
		t.Fatalf("unknown type must be skipped, mounted=%d", rt.MountedCount())
	}
	if pageBus.SubscriberCount(bus.SolveSaved) != 1 {
		t.Fatalf("mounted widget's subscription missing")
	}
}

func TestMountMergesDefaultConfig(t *testing.T) {
	component := &subscribingComponent{}
	rt, _ := newTestRuntime(t, component)

	err := rt.MountWidget(context.Background(),
		instance("w1", "probe", model.WidgetConfig{"depth": float64(2)}), nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if component.seenCfg["title"] != "Probe" {
		t.Fatalf("default config key missing: %v", component.seenCfg)
	}
	if component.seenCfg["depth"] != float64(2) {
		t.Fatalf("instance override must win: %v", component.seenCfg)
	}
}

func TestUnmountClosesScope(t *testing.T) {
	component := &subscribingComponent{}
	rt, pageBus := newTestRuntime(t, component)

	if err := rt.MountWidget(context.Background(), instance("w1", "probe", nil), nil); err != nil {
		t.Fatalf("mount: %v", err)
	}
	rt.UnmountWidget("w1")

	if !component.unmounted {
		t.Fatalf("component must unmount")
	}
	if pageBus.SubscriberCount(bus.SolveSaved) != 0 {
		t.Fatalf("scope must be closed on unmount")
	}
	if rt.MountedCount() != 0 {
		t.Fatalf("mounted count must drop")
	}

	// Unknown id is a no-op.
	rt.UnmountWidget("w1")
}

func TestCloseUnmountsEverything(t *testing.T) {
	component := &subscribingComponent{}
	rt, pageBus := newTestRuntime(t, component)

	if err := rt.MountWidget(context.Background(), instance("w1", "probe", nil), nil); err != nil {
		t.Fatalf("mount: %v", err)
	}
	rt.Close()

	if rt.MountedCount() != 0 {
		t.Fatalf("close must unmount everything")
	}
	if pageBus.SubscriberCount(bus.SolveSaved) != 0 {
		t.Fatalf("close must release subscriptions")
	}
}
