package builtin

import (
	"context"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/stats"
	"cubedeck/internal/timer"
	"cubedeck/internal/widget"
)

// StatsCardRegistration describes the session statistics widget.
func StatsCardRegistration() widget.Registration {
	return widget.Registration{
		Metadata: model.WidgetTypeMetadata{
			ID:          "stats-card",
			Name:        "Stats Card",
			Description: "Displays session statistics like ao5, ao12, best time, etc.",
			Icon:        "StatsChartOutline",
			Category:    model.CategoryStats,
			DefaultConfig: model.WidgetConfig{
				"title":      "Session Stats",
				"showHeader": false,
				"borderless": false,
				"showStats":  []any{"ao5", "ao12", "ao100", "mean"},
				"layout":     "horizontal",
			},
			DefaultSize: model.Size{Width: 6, Height: 1},
			MinSize:     &model.Size{Width: 3, Height: 1},
			ConfigSchema: &model.ConfigSchema{
				Fields: []model.ConfigField{
					{
						Key:     "showStats",
						Label:   "Statistics to show",
						Type:    model.FieldMultiselect,
						Default: []any{"ao5", "ao12", "ao100", "mean"},
						Options: []model.FieldOption{
							{Label: "Solve count", Value: "count"},
							{Label: "Best time", Value: "best"},
							{Label: "Worst time", Value: "worst"},
							{Label: "Mean", Value: "mean"},
							{Label: "ao5", Value: "ao5"},
							{Label: "ao12", Value: "ao12"},
							{Label: "ao50", Value: "ao50"},
							{Label: "ao100", Value: "ao100"},
						},
					},
					{
						Key:     "layout",
						Label:   "Layout",
						Type:    model.FieldSelect,
						Default: "horizontal",
						Options: []model.FieldOption{
							{Label: "Horizontal", Value: "horizontal"},
							{Label: "Grid", Value: "grid"},
						},
					},
				},
			},
		},
		Component: func() widget.Component { return &statsCardComponent{} },
	}
}

// statsCardComponent recomputes its statistics whenever a solve is saved and
// publishes the formatted values through the widget state store.
type statsCardComponent struct {
	env widget.Env
}

func (c *statsCardComponent) Mount(ctx context.Context, env widget.Env) error {
	c.env = env

	if err := c.refresh(ctx); err != nil {
		return err
	}
	env.Events.On(bus.SolveSaved, bus.HandlerOf(func(any) {
		if err := c.refresh(context.Background()); err != nil {
			builtinLogger.Sugar().Warnf("stats widget %s: refresh: %v", env.InstanceID, err)
		}
	}), linkOpts(env.Config)...)
	return nil
}

func (c *statsCardComponent) Unmount() {}

func (c *statsCardComponent) refresh(ctx context.Context) error {
	if c.env.Store == nil {
		return nil
	}
	var filter model.SolveFilter
	if c.env.Filter != nil {
		filter = *c.env.Filter
	}
	solves, err := c.env.Store.QuerySolves(ctx, filter, 0)
	if err != nil {
		return err
	}
	// QuerySolves returns newest first; averaging wants oldest first.
	for i, j := 0, len(solves)-1; i < j; i, j = i+1, j-1 {
		solves[i], solves[j] = solves[j], solves[i]
	}

	st := stats.Compute(solves)
	shown := cfgStrings(c.env.Config, "showStats")
	values := map[string]any{}
	for _, key := range shown {
		values[key] = statValue(st, key)
	}

	c.env.State.SetState(c.env.InstanceID, map[string]any{
		"count":  st.Count,
		"values": values,
	})
	return nil
}

// statValue formats one statistic for display; nil windows render as "-".
func statValue(st stats.Statistics, key string) any {
	format := func(ms *int64) any {
		if ms == nil {
			return "-"
		}
		return timer.FormatDuration(*ms)
	}
	switch key {
	case "count":
		return st.Count
	case "best":
		return format(st.Best)
	case "worst":
		return format(st.Worst)
	case "mean":
		return format(st.Mean)
	case "ao5":
		return format(st.Ao5)
	case "ao12":
		return format(st.Ao12)
	case "ao50":
		return format(st.Ao50)
	case "ao100":
		return format(st.Ao100)
	default:
		return "-"
	}
}
