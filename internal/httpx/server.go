package httpx

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/bus"
	"cubedeck/internal/esx"
	"cubedeck/internal/mqx"
	"cubedeck/internal/pagestore"
	"cubedeck/internal/scramble"
	"cubedeck/internal/store"
	"cubedeck/internal/theme"
	"cubedeck/internal/widget"
	"cubedeck/internal/widgetstate"
)

// Server bundles the application services the handlers operate on and the
// live runtime of the currently active page.
type Server struct {
	Pages     *pagestore.Store
	Store     *store.Store
	Registry  *widget.Registry
	State     *widgetstate.Store
	Theme     *theme.Store
	Scrambles scramble.Generator
	MQ        mqx.Publisher
	ES        *esx.Client

	mu      sync.Mutex
	runtime *widget.Runtime
}

// Register mounts every route on the app under /api/v1.
func (s *Server) Register(app *fiber.App) {
	app.Get("/health", HealthHandler)

	v1 := app.Group("/api/v1")

	v1.Get("/widget-types", s.listWidgetTypes)
	v1.Get("/widget-types/:id", s.getWidgetType)

	v1.Get("/pages", s.listPages)
	v1.Post("/pages", s.createPage)
	v1.Get("/pages/:id", s.getPage)
	v1.Patch("/pages/:id", s.updatePage)
	v1.Delete("/pages/:id", s.deletePage)
	v1.Post("/pages/:id/save", s.savePage)
	v1.Post("/pages/:id/reload", s.reloadPage)
	v1.Post("/pages/:id/activate", s.activatePage)

	v1.Post("/pages/:id/widgets", s.addWidget)
	v1.Patch("/pages/:id/widgets/:widgetId", s.updateWidget)
	v1.Patch("/pages/:id/widgets/:widgetId/config", s.updateWidgetConfig)
	v1.Delete("/pages/:id/widgets/:widgetId", s.removeWidget)

	v1.Post("/solves", s.createSolve)
	v1.Get("/solves", s.listSolves)
	v1.Get("/solves/:id", s.getSolve)
	v1.Patch("/solves/:id", s.updateSolve)
	v1.Delete("/solves/:id", s.deleteSolve)
	v1.Get("/search/solves", s.searchSolves)

	v1.Get("/sessions", s.listSessions)
	v1.Post("/sessions", s.createSession)
	v1.Get("/sessions/:id", s.getSession)
	v1.Get("/sessions/:id/stats", s.sessionStats)
	v1.Post("/sessions/:id/archive", s.archiveSession)

	v1.Get("/tags", s.listTags)
	v1.Post("/tags", s.createTag)
	v1.Delete("/tags/:id", s.deleteTag)

	v1.Get("/widget-state/:instanceId", s.getWidgetState)
	v1.Put("/widget-state/:instanceId", s.putWidgetState)
	v1.Patch("/widget-state/:instanceId", s.patchWidgetState)
	v1.Delete("/widget-state/:instanceId", s.deleteWidgetState)

	v1.Get("/theme", s.getTheme)
	v1.Put("/theme", s.putTheme)
	v1.Post("/theme/reset", s.resetTheme)

	v1.Get("/scrambles/:eventCode", s.generateScramble)
}

// HealthHandler reports service liveness.
func HealthHandler(c *fiber.Ctx) error {
	return OK(c, fiber.Map{"status": "ok"})
}

// mountPage swaps the active widget runtime over to the given page. The
// previous page's widgets are torn down first so their subscriptions die
// with them.
func (s *Server) mountPage(ctx context.Context, pageID string) error {
	page, ok := s.Pages.Page(pageID)
	if !ok {
		return nil
	}

	rt := widget.NewRuntime(s.Registry, bus.New(), widget.Deps{
		State:     s.State,
		Store:     s.Store,
		Scrambles: s.Scrambles,
	})
	if err := rt.MountPage(ctx, page); err != nil {
		rt.Close()
		return err
	}

	s.mu.Lock()
	prev := s.runtime
	s.runtime = rt
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return nil
}

// Runtime returns the active page runtime, nil when no page is mounted.
func (s *Server) Runtime() *widget.Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runtime
}

// Close tears down the active runtime.
func (s *Server) Close() {
	s.mu.Lock()
	rt := s.runtime
	s.runtime = nil
	s.mu.Unlock()
	if rt != nil {
		rt.Close()
	}
}
