// Package main is the entry point for the dashboard server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cubedeck/internal/config"
	"cubedeck/internal/db"
	"cubedeck/internal/esx"
	"cubedeck/internal/httpx"
	"cubedeck/internal/logx"
	"cubedeck/internal/model"
	"cubedeck/internal/mqx"
	"cubedeck/internal/pagestore"
	"cubedeck/internal/redisx"
	"cubedeck/internal/scramble"
	"cubedeck/internal/server"
	"cubedeck/internal/store"
	"cubedeck/internal/theme"
	"cubedeck/internal/widget/builtin"
	"cubedeck/internal/widgetstate"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load config (env first; optional Apollo override)
	cfg, cfgStore, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	// Init global logger first
	logx.Init(cfg.Log.Level, cfg.Log.Format)

	mainLogger := logx.GetScope("main")

	mainLogger.Info("config loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.Server.Addr),
		zap.String("data.dir", cfg.Data.Dir),
		zap.String("log.level", cfg.Log.Level),
		zap.String("log.format", cfg.Log.Format),
	)

	// Open the database (embedded sqlite by default, pgx for postgres DSNs)
	sqldb, dialect, closeDB, err := db.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Error("open db error", "err", err)
		panic(err)
	}
	defer closeDB()

	st := store.New(sqldb, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		mainLogger.Sugar().Error("migrate error", "err", err)
		panic(err)
	}

	// Page cache over the persistence layer
	pages := pagestore.New(st)
	if err := pages.LoadPages(ctx); err != nil {
		mainLogger.Sugar().Error("load pages error", "err", err)
		panic(err)
	}
	if err := seedTemplates(ctx, st, pages); err != nil {
		mainLogger.Sugar().Warn("seed templates failed", "err", err)
	}

	// Optional deps: Redis, MQ, ES. Each degrades gracefully when absent.
	rdb, redisClose, err := redisx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("redis init failed", "err", err)
		rdb = nil
	} else {
		defer redisClose()
	}

	var publisher mqx.Publisher = mqx.NopPublisher{}
	if cfg.MQ.URL != "" {
		if pub, err := mqx.NewRabbitPublisher(cfg.MQ.URL, cfg.MQ.Exchange); err != nil {
			mainLogger.Sugar().Warn("mq init failed", "err", err)
		} else {
			publisher = pub
			defer func() { _ = pub.Close() }()
		}
	}

	esClient, esClose, err := esx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("es init failed", "err", err)
		esClient = nil
	} else {
		defer esClose()
	}

	// Widget instance state: Redis when available, a local file otherwise
	var backend widgetstate.Backend
	if rdb != nil {
		backend = widgetstate.NewRedisBackend(rdb, "cubedeck:widget-state")
	} else {
		backend = widgetstate.NewFileBackend(filepath.Join(cfg.Data.Dir, "widget-state.json"))
	}
	state := widgetstate.New(backend)

	themes := theme.NewStore(filepath.Join(cfg.Data.Dir, "theme.json"))

	srv := &httpx.Server{
		Pages:     pages,
		Store:     st,
		Registry:  builtin.DefaultRegistry(),
		State:     state,
		Theme:     themes,
		Scrambles: scramble.NewGenerator(time.Now().UnixNano()),
		MQ:        publisher,
		ES:        esClient,
	}
	defer srv.Close()

	// Fiber app and routes
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler()})
	httpx.RegisterCommonMiddlewares(app)
	if rdb != nil {
		app.Use("/api", httpx.RateLimit(rdb, 60, 600))
	}
	srv.Register(app)

	// Watch for dynamic config changes (Apollo)
	cfgStore.AddValidator(func(newCfg *config.Config, changed map[string]bool) error {
		if changed["db.max_open"] || changed["db.max_idle"] {
			if newCfg.DB.MaxIdleConns > newCfg.DB.MaxOpenConns {
				return fmt.Errorf("DB_MAX_IDLE cannot exceed DB_MAX_OPEN")
			}
		}
		return nil
	})

	cfgStore.Watch(func(newCfg *config.Config, changed map[string]bool) {
		if changed["db.max_open"] || changed["db.max_idle"] {
			db.UpdatePool(newCfg.DB.MaxOpenConns, newCfg.DB.MaxIdleConns)
			mainLogger.Info("db pool updated",
				zap.Int("max_open", newCfg.DB.MaxOpenConns),
				zap.Int("max_idle", newCfg.DB.MaxIdleConns),
			)
		}
		if changed["db.url"] {
			mainLogger.Warn("db.url changed; restart required to reconnect")
		}
		if changed["server.addr"] {
			mainLogger.Warn("server.addr changed; restart required to take effect",
				zap.String("addr", newCfg.Server.Addr),
			)
		}
		if changed["log.level"] || changed["log.format"] {
			logx.Init(newCfg.Log.Level, newCfg.Log.Format)
			mainLogger.Info("logger reconfigured",
				zap.String("level", newCfg.Log.Level),
				zap.String("format", newCfg.Log.Format),
			)
		}
	})

	// Graceful shutdown
	go func() {
		ln, err := server.GetListener(cfg.Server.Addr)
		if err != nil {
			mainLogger.Sugar().Errorf("listener error: %v", err)
			return
		}
		if err := app.Listener(ln); err != nil {
			mainLogger.Sugar().Infof("fiber exit: %v", err)
		}
	}()
	mainLogger.Sugar().Infof("server started on %s", cfg.Server.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	mainLogger.Sugar().Info("shutting down...")
	_ = app.Shutdown()
}

// seedTemplates writes the built-in template pages on first run. Templates
// are read-only starting points users duplicate into their own pages.
func seedTemplates(ctx context.Context, st *store.Store, pages *pagestore.Store) error {
	if len(pages.TemplatePages()) > 0 {
		return nil
	}

	now := time.Now()
	instance := func(typeID string, pos model.GridPosition, cfg model.WidgetConfig) model.WidgetInstance {
		if cfg == nil {
			cfg = model.WidgetConfig{}
		}
		return model.WidgetInstance{
			ID:        uuid.NewString(),
			TypeID:    typeID,
			Position:  pos,
			Config:    cfg,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	templates := []*model.Page{
		{
			ID:          uuid.NewString(),
			Name:        "Classic Timer",
			Icon:        "TimerOutline",
			Description: "Timer, scramble and rolling averages for standard practice",
			IsTemplate:  true,
			SortOrder:   1,
			GridConfig:  model.DefaultGridConfig(),
			Widgets: []model.WidgetInstance{
				instance("scramble", model.GridPosition{X: 0, Y: 0, Width: 12, Height: 2}, nil),
				instance("timer", model.GridPosition{X: 3, Y: 2, Width: 6, Height: 3}, nil),
				instance("stats-card", model.GridPosition{X: 0, Y: 5, Width: 6, Height: 1}, nil),
				instance("solve-history", model.GridPosition{X: 9, Y: 2, Width: 3, Height: 4}, nil),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Stats Dashboard",
			Icon:        "StatsChartOutline",
			Description: "Session review without a timer",
			IsTemplate:  true,
			SortOrder:   2,
			GridConfig:  model.DefaultGridConfig(),
			Widgets: []model.WidgetInstance{
				instance("stats-card", model.GridPosition{X: 0, Y: 0, Width: 12, Height: 1},
					model.WidgetConfig{"showStats": []any{"ao5", "ao12", "ao50", "ao100", "best", "mean"}}),
				instance("solve-history", model.GridPosition{X: 0, Y: 1, Width: 12, Height: 5},
					model.WidgetConfig{"maxItems": float64(100), "showScramble": true, "showDate": true}),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, tpl := range templates {
		if err := st.PutPage(ctx, tpl); err != nil {
			return err
		}
	}
	return pages.LoadPages(ctx)
}
