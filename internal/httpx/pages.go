package httpx

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/model"
	"cubedeck/internal/pagestore"
)

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// UpdatePageRequest is the partial update body for a page.
type UpdatePageRequest struct {
	Name                *string            `json:"name"`
	Icon                *string            `json:"icon"`
	Description         *string            `json:"description"`
	SortOrder           *int               `json:"sortOrder"`
	GridConfig          *model.GridConfig  `json:"gridConfig"`
	DefaultFilter       *model.SolveFilter `json:"defaultFilter"`
	DefaultScrambleType *string            `json:"defaultScrambleType"`
}

func (s *Server) listPages(c *fiber.Ctx) error {
	switch c.Query("kind", "") {
	case "user":
		return OK(c, s.Pages.UserPages())
	case "template":
		return OK(c, s.Pages.TemplatePages())
	default:
		pages := append(s.Pages.UserPages(), s.Pages.TemplatePages()...)
		return OK(c, pages)
	}
}

func (s *Server) createPage(c *fiber.Ctx) error {
	var req CreatePageRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return BadRequest("name required", nil)
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	page, err := s.Pages.CreatePage(ctx, req.Name, req.Icon)
	if err != nil {
		return InternalError("create page failed", err.Error())
	}
	return Created(c, page)
}

func (s *Server) getPage(c *fiber.Ctx) error {
	page, ok := s.Pages.Page(c.Params("id"))
	if !ok {
		ctx, cancel := handlerContext(c)
		defer cancel()
		stored, found, err := s.Store.GetPage(ctx, c.Params("id"))
		if err != nil {
			return InternalError("get page failed", err.Error())
		}
		if !found {
			return NotFound("page not found")
		}
		return OK(c, stored)
	}
	return OK(c, page)
}

func (s *Server) updatePage(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := s.Pages.Page(id); !ok {
		return NotFound("page not found")
	}
	var req UpdatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest("invalid body", err.Error())
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	upd := pagestore.PageUpdate{
		Name:                req.Name,
		Icon:                req.Icon,
		Description:         req.Description,
		SortOrder:           req.SortOrder,
		GridConfig:          req.GridConfig,
		DefaultScrambleType: req.DefaultScrambleType,
	}
	if req.DefaultFilter != nil {
		f := req.DefaultFilter
		upd.DefaultFilter = &f
	}
	if err := s.Pages.UpdatePage(ctx, id, upd); err != nil {
		return InternalError("update page failed", err.Error())
	}
	page, _ := s.Pages.Page(id)
	return OK(c, page)
}

func (s *Server) deletePage(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := s.Pages.Page(id); !ok {
		return NotFound("page not found")
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Pages.DeletePage(ctx, id); err != nil {
		return InternalError("delete page failed", err.Error())
	}
	if err := s.publishEvent(ctx, "page.deleted", fiber.Map{"id": id}); err != nil {
		httpxLogger.Sugar().Warnf("publish page.deleted: %v", err)
	}
	return OK(c, fiber.Map{"deleted": id})
}

func (s *Server) savePage(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := s.Pages.Page(id); !ok {
		return NotFound("page not found")
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Pages.SavePage(ctx, id); err != nil {
		return InternalError("save page failed", err.Error())
	}
	page, _ := s.Pages.Page(id)
	if err := s.publishEvent(ctx, "page.saved", fiber.Map{"id": id}); err != nil {
		httpxLogger.Sugar().Warnf("publish page.saved: %v", err)
	}
	return OK(c, page)
}

func (s *Server) reloadPage(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Pages.ReloadPage(ctx, id); err != nil {
		return InternalError("reload page failed", err.Error())
	}
	page, ok := s.Pages.Page(id)
	if !ok {
		return NotFound("page not found")
	}
	return OK(c, page)
}

// activatePage selects the page and mounts its widgets on a fresh page bus.
func (s *Server) activatePage(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Pages.SetCurrentPage(ctx, id); err != nil {
		return InternalError("select page failed", err.Error())
	}
	page := s.Pages.CurrentPage()
	if page == nil {
		return NotFound("page not found")
	}
	if err := s.mountPage(ctx, id); err != nil {
		return InternalError("mount page failed", err.Error())
	}
	return OK(c, page)
}

func handlerContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 5*time.Second)
}
