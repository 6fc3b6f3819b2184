package builtin

import (
	"context"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/timer"
	"cubedeck/internal/widget"
)

// SolveHistoryRegistration describes the recent-solves list widget.
func SolveHistoryRegistration() widget.Registration {
	return widget.Registration{
		Metadata: model.WidgetTypeMetadata{
			ID:          "solve-history",
			Name:        "Solve History",
			Description: "Shows recent solves in a scrollable list",
			Icon:        "ListOutline",
			Category:    model.CategoryStats,
			DefaultConfig: model.WidgetConfig{
				"title":        "Recent Solves",
				"showHeader":   true,
				"borderless":   false,
				"maxItems":     50,
				"showScramble": true,
				"showDate":     false,
			},
			DefaultSize: model.Size{Width: 4, Height: 4},
			MinSize:     &model.Size{Width: 3, Height: 2},
			ConfigSchema: &model.ConfigSchema{
				Fields: []model.ConfigField{
					{
						Key:     "maxItems",
						Label:   "Max items to show",
						Type:    model.FieldNumber,
						Default: 50,
						Min:     floatPtr(5),
						Max:     floatPtr(200),
						Step:    floatPtr(5),
					},
					{
						Key:     "showScramble",
						Label:   "Show scramble",
						Type:    model.FieldBoolean,
						Default: true,
					},
					{
						Key:     "showDate",
						Label:   "Show time",
						Type:    model.FieldBoolean,
						Default: false,
					},
				},
			},
		},
		Component: func() widget.Component { return &solveHistoryComponent{} },
	}
}

// solveHistoryComponent keeps the newest solves in its widget state,
// refreshed whenever a solve is saved.
type solveHistoryComponent struct {
	env widget.Env
}

func (c *solveHistoryComponent) Mount(ctx context.Context, env widget.Env) error {
	c.env = env

	if err := c.refresh(ctx); err != nil {
		return err
	}
	env.Events.On(bus.SolveSaved, bus.HandlerOf(func(any) {
		if err := c.refresh(context.Background()); err != nil {
			builtinLogger.Sugar().Warnf("history widget %s: refresh: %v", env.InstanceID, err)
		}
	}), linkOpts(env.Config)...)
	return nil
}

func (c *solveHistoryComponent) Unmount() {}

func (c *solveHistoryComponent) refresh(ctx context.Context) error {
	if c.env.Store == nil {
		return nil
	}
	maxItems := cfgInt(c.env.Config, "maxItems", 50)
	var filter model.SolveFilter
	if c.env.Filter != nil {
		filter = *c.env.Filter
	}
	solves, err := c.env.Store.QuerySolves(ctx, filter, maxItems)
	if err != nil {
		return err
	}

	items := make([]map[string]any, 0, len(solves))
	for _, s := range solves {
		item := map[string]any{
			"id":      s.ID,
			"time":    timer.FormatDuration(s.Duration),
			"penalty": string(s.Penalty),
		}
		if cfgBool(c.env.Config, "showScramble", true) {
			item["scramble"] = s.Scramble
		}
		if cfgBool(c.env.Config, "showDate", false) {
			item["timestamp"] = s.Timestamp
		}
		items = append(items, item)
	}

	c.env.State.SetState(c.env.InstanceID, map[string]any{
		"solves": items,
		"count":  len(items),
	})
	return nil
}
