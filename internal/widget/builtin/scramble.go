package builtin

import (
	"context"
	"sync"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/widget"
)

// ScrambleRegistration describes the scramble display widget.
func ScrambleRegistration() widget.Registration {
	return widget.Registration{
		Metadata: model.WidgetTypeMetadata{
			ID:          "scramble",
			Name:        "Scramble",
			Description: "Displays the current scramble with copy and regenerate options",
			Icon:        "ShuffleOutline",
			Category:    model.CategoryDisplay,
			DefaultConfig: model.WidgetConfig{
				"title":        "Scramble",
				"showHeader":   false,
				"borderless":   false,
				"scrambleType": "333",
				"fontSize":     "medium",
			},
			DefaultSize: model.Size{Width: 6, Height: 2},
			MinSize:     &model.Size{Width: 3, Height: 1},
			ConfigSchema: &model.ConfigSchema{
				Fields: []model.ConfigField{
					{
						Key:     "scrambleType",
						Label:   "Scramble Type",
						Type:    model.FieldSelect,
						Default: "333",
						Options: []model.FieldOption{
							{Label: "3x3x3", Value: "333"},
							{Label: "2x2x2", Value: "222"},
							{Label: "4x4x4", Value: "444"},
							{Label: "5x5x5", Value: "555"},
							{Label: "6x6x6", Value: "666"},
							{Label: "7x7x7", Value: "777"},
							{Label: "Pyraminx", Value: "pyram"},
							{Label: "Megaminx", Value: "minx"},
							{Label: "Skewb", Value: "skewb"},
							{Label: "Square-1", Value: "sq1"},
							{Label: "Clock", Value: "clock"},
							{Label: "3x3 BLD", Value: "333bf"},
							{Label: "3x3 OH", Value: "333oh"},
						},
					},
					{
						Key:     "fontSize",
						Label:   "Font Size",
						Type:    model.FieldSelect,
						Default: "medium",
						Options: []model.FieldOption{
							{Label: "Small", Value: "small"},
							{Label: "Medium", Value: "medium"},
							{Label: "Large", Value: "large"},
						},
					},
				},
			},
		},
		Component: func() widget.Component { return &scrambleComponent{} },
	}
}

// scrambleComponent is the scramble source of a page: it generates a
// scramble on mount, publishes a fresh one after every finished solve, and
// answers pull-style requests with the current scramble.
type scrambleComponent struct {
	env widget.Env

	mu      sync.Mutex
	current bus.ScrambleGeneratedPayload
}

func (c *scrambleComponent) Mount(ctx context.Context, env widget.Env) error {
	c.env = env

	if err := c.regenerate(ctx); err != nil {
		return err
	}

	opts := linkOpts(env.Config)
	env.Events.On(bus.RequestCurrentScramble, bus.HandlerOf(func(any) {
		c.mu.Lock()
		current := c.current
		c.mu.Unlock()
		env.Events.Emit(bus.ScrambleGenerated, current, opts...)
	}), opts...)

	env.Events.On(bus.SolveFinished, bus.HandlerOf(func(any) {
		if err := c.regenerate(context.Background()); err != nil {
			builtinLogger.Sugar().Warnf("scramble widget %s: regenerate: %v", env.InstanceID, err)
		}
	}), opts...)

	return nil
}

func (c *scrambleComponent) Unmount() {}

func (c *scrambleComponent) regenerate(ctx context.Context) error {
	scrambleType := cfgString(c.env.Config, "scrambleType", "333")
	seq, err := c.env.Scrambles.Generate(ctx, scrambleType)
	if err != nil {
		return err
	}

	payload := bus.ScrambleGeneratedPayload{Scramble: seq, ScrambleType: scrambleType}
	c.mu.Lock()
	c.current = payload
	c.mu.Unlock()

	c.env.State.SetState(c.env.InstanceID, map[string]any{
		"scramble":     seq,
		"scrambleType": scrambleType,
	})
	c.env.Events.Emit(bus.ScrambleGenerated, payload, linkOpts(c.env.Config)...)
	return nil
}
