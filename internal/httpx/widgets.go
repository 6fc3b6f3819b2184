package httpx

import (
	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/model"
	"cubedeck/internal/pagestore"
	"cubedeck/internal/widget"
)

func (s *Server) listWidgetTypes(c *fiber.Ctx) error {
	if category := c.Query("category", ""); category != "" {
		regs := s.Registry.GetByCategory(model.WidgetCategory(category))
		return OK(c, metadataOf(regs...))
	}
	return OK(c, metadataOf(s.Registry.GetAll()...))
}

func (s *Server) getWidgetType(c *fiber.Ctx) error {
	reg, ok := s.Registry.Get(c.Params("id"))
	if !ok {
		return NotFound("widget type not found")
	}
	return OK(c, reg.Metadata)
}

// AddWidgetRequest is the request body for placing a widget on a page.
type AddWidgetRequest struct {
	TypeID   string             `json:"typeId"`
	Position model.GridPosition `json:"position"`
	Config   model.WidgetConfig `json:"config"`
}

// UpdateWidgetRequest is the partial update body for a widget instance.
type UpdateWidgetRequest struct {
	Position *model.GridPosition `json:"position"`
	Config   model.WidgetConfig  `json:"config"`
}

func (s *Server) addWidget(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if _, ok := s.Pages.Page(pageID); !ok {
		return NotFound("page not found")
	}
	var req AddWidgetRequest
	if err := c.BodyParser(&req); err != nil || req.TypeID == "" {
		return BadRequest("typeId required", nil)
	}
	if !s.Registry.Has(req.TypeID) {
		return BadRequest("unknown widget type", req.TypeID)
	}

	w := s.Pages.NewWidgetInstance(req.TypeID, req.Position, req.Config)
	s.Pages.AddWidget(pageID, w)
	return Created(c, w)
}

func (s *Server) updateWidget(c *fiber.Ctx) error {
	pageID, widgetID := c.Params("id"), c.Params("widgetId")
	if !s.widgetExists(pageID, widgetID) {
		return NotFound("widget not found")
	}
	var req UpdateWidgetRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest("invalid body", err.Error())
	}

	s.Pages.UpdateWidget(pageID, widgetID, pagestore.WidgetUpdate{
		Position: req.Position,
		Config:   req.Config,
	})
	page, _ := s.Pages.Page(pageID)
	w, _ := page.Widget(widgetID)
	return OK(c, w)
}

func (s *Server) updateWidgetConfig(c *fiber.Ctx) error {
	pageID, widgetID := c.Params("id"), c.Params("widgetId")
	if !s.widgetExists(pageID, widgetID) {
		return NotFound("widget not found")
	}
	var partial model.WidgetConfig
	if err := c.BodyParser(&partial); err != nil {
		return BadRequest("invalid body", err.Error())
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Pages.UpdateWidgetConfig(ctx, pageID, widgetID, partial); err != nil {
		return InternalError("update widget config failed", err.Error())
	}
	page, _ := s.Pages.Page(pageID)
	w, _ := page.Widget(widgetID)
	return OK(c, w)
}

func (s *Server) removeWidget(c *fiber.Ctx) error {
	pageID, widgetID := c.Params("id"), c.Params("widgetId")
	if !s.widgetExists(pageID, widgetID) {
		return NotFound("widget not found")
	}
	s.Pages.RemoveWidget(pageID, widgetID)
	if rt := s.Runtime(); rt != nil {
		rt.UnmountWidget(widgetID)
	}
	return OK(c, fiber.Map{"deleted": widgetID})
}

func (s *Server) widgetExists(pageID, widgetID string) bool {
	page, ok := s.Pages.Page(pageID)
	if !ok {
		return false
	}
	_, ok = page.Widget(widgetID)
	return ok
}

func metadataOf(regs ...widget.Registration) []model.WidgetTypeMetadata {
	out := make([]model.WidgetTypeMetadata, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.Metadata)
	}
	return out
}
