// Package builtin registers the core widget types: timer, scramble, stats
// card and solve history. Components here are the service-side halves of the
// widgets; they react to page events and keep their widget state current for
// whatever frontend renders them.
package builtin

import (
	"sync"

	"cubedeck/internal/bus"
	"cubedeck/internal/logx"
	"cubedeck/internal/model"
	"cubedeck/internal/widget"
)

var builtinLogger = logx.GetScope("widget.builtin")

// RegisterCore registers the four core widget types.
func RegisterCore(r *widget.Registry) {
	r.Register(TimerRegistration())
	r.Register(ScrambleRegistration())
	r.Register(StatsCardRegistration())
	r.Register(SolveHistoryRegistration())
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *widget.Registry
)

// DefaultRegistry returns the process-wide registry, creating it with the
// core widgets on first call.
func DefaultRegistry() *widget.Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = widget.NewRegistry()
		RegisterCore(defaultRegistry)
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry. Mainly for tests.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}

// linkOpts reads the optional "linkId" config key so a widget instance can
// be pinned to one event link group.
func linkOpts(cfg model.WidgetConfig) []bus.Options {
	if id, ok := cfg["linkId"].(string); ok && id != "" {
		return []bus.Options{{LinkID: id}}
	}
	return nil
}

func cfgString(cfg model.WidgetConfig, key, fallback string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func cfgInt(cfg model.WidgetConfig, key string, fallback int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func cfgBool(cfg model.WidgetConfig, key string, fallback bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return fallback
}

func cfgStrings(cfg model.WidgetConfig, key string) []string {
	raw, ok := cfg[key].([]any)
	if !ok {
		if typed, ok := cfg[key].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func floatPtr(f float64) *float64 { return &f }
