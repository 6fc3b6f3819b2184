package builtin

import (
	"context"

	"cubedeck/internal/bus"
	"cubedeck/internal/model"
	"cubedeck/internal/timer"
	"cubedeck/internal/widget"
)

// TimerRegistration describes the main solve timer widget.
func TimerRegistration() widget.Registration {
	return widget.Registration{
		Metadata: model.WidgetTypeMetadata{
			ID:          "timer",
			Name:        "Timer",
			Description: "Main cubing timer with hold-to-start functionality",
			Icon:        "TimerOutline",
			Category:    model.CategoryTimer,
			DefaultConfig: model.WidgetConfig{
				"title":                "Timer",
				"showHeader":           false,
				"borderless":           true,
				"holdTime":             300,
				"hideTimeWhileRunning": false,
			},
			DefaultSize: model.Size{Width: 6, Height: 3},
			MinSize:     &model.Size{Width: 4, Height: 2},
			ConfigSchema: &model.ConfigSchema{
				Fields: []model.ConfigField{
					{
						Key:         "holdTime",
						Label:       "Hold time (ms)",
						Type:        model.FieldNumber,
						Default:     300,
						Min:         floatPtr(0),
						Max:         floatPtr(1000),
						Step:        floatPtr(50),
						Description: "How long to hold space before timer is ready",
					},
					{
						Key:         "hideTimeWhileRunning",
						Label:       "Hide time while solving",
						Type:        model.FieldBoolean,
						Default:     false,
						Description: "Hide the time display during a solve",
					},
				},
			},
		},
		Component: func() widget.Component { return &timerComponent{} },
	}
}

// timerComponent hosts the solve timer for a page and persists finished
// solves. It listens for the page's scrambles so each saved solve carries
// the scramble it was performed on, and publishes SolveSaved once the record
// is durable.
type timerComponent struct {
	env   widget.Env
	timer *timer.Timer
}

func (c *timerComponent) Mount(ctx context.Context, env widget.Env) error {
	c.env = env

	settings := timer.DefaultSettings()
	settings.HoldTime = int64(cfgInt(env.Config, "holdTime", 300))
	settings.HideTime = env.Config["hideTimeWhileRunning"] == true

	opts := linkOpts(env.Config)
	c.timer = timer.New(&linkEmitter{scope: env.Events, opts: opts},
		timer.WithSettings(settings))

	env.Events.On(bus.ScrambleGenerated, bus.HandlerOf(func(payload any) {
		if p, ok := payload.(bus.ScrambleGeneratedPayload); ok {
			c.timer.SetScramble(p.Scramble, p.ScrambleType)
		}
	}), opts...)

	env.Events.On(bus.SolveFinished, bus.HandlerOf(func(payload any) {
		p, ok := payload.(bus.SolveFinishedPayload)
		if !ok {
			return
		}
		c.saveSolve(context.Background(), p)
	}), opts...)

	// Pull the page's current scramble so the first solve is attributed.
	env.Events.Emit(bus.RequestCurrentScramble, nil, opts...)
	return nil
}

func (c *timerComponent) Unmount() {}

// Timer exposes the hosted state machine so input plumbing can drive it.
func (c *timerComponent) Timer() *timer.Timer { return c.timer }

func (c *timerComponent) saveSolve(ctx context.Context, p bus.SolveFinishedPayload) {
	if c.env.Store == nil {
		return
	}
	scrambleType := p.ScrambleType
	if scrambleType == "" {
		scrambleType = "333"
	}
	session, err := c.env.Store.GetOrCreateDefaultSession(ctx, scrambleType)
	if err != nil {
		builtinLogger.Sugar().Errorf("timer widget %s: resolve session: %v", c.env.InstanceID, err)
		return
	}

	solve := &model.Solve{
		Duration:     p.Duration,
		Scramble:     p.Scramble,
		ScrambleType: scrambleType,
		SessionID:    session.ID,
	}
	if c.env.Filter != nil {
		solve.PageID = c.env.Filter.PageID
	}
	id, err := c.env.Store.AddSolve(ctx, solve)
	if err != nil {
		builtinLogger.Sugar().Errorf("timer widget %s: save solve: %v", c.env.InstanceID, err)
		return
	}

	c.env.State.UpdateState(c.env.InstanceID, map[string]any{
		"lastSolveId": id,
		"lastTime":    timer.FormatDuration(p.Duration),
	})
	c.env.Events.Emit(bus.SolveSaved, bus.SolveSavedPayload{SolveID: id}, linkOpts(c.env.Config)...)
}

// linkEmitter pins the timer's emits to the widget's link group.
type linkEmitter struct {
	scope *bus.Scope
	opts  []bus.Options
}

func (e *linkEmitter) Emit(event bus.EventName, payload any, _ ...bus.Options) {
	e.scope.Emit(event, payload, e.opts...)
}
