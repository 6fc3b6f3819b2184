package httpx

import (
	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/model"
)

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) listTags(c *fiber.Ctx) error {
	ctx, cancel := handlerContext(c)
	defer cancel()

	tags, err := s.Store.ListTags(ctx)
	if err != nil {
		return InternalError("query tags failed", err.Error())
	}
	return OK(c, tags)
}

func (s *Server) createTag(c *fiber.Ctx) error {
	var req CreateTagRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return BadRequest("name required", nil)
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	tag := &model.Tag{Name: req.Name, Color: req.Color}
	if _, err := s.Store.CreateTag(ctx, tag); err != nil {
		return InternalError("create tag failed", err.Error())
	}
	return Created(c, tag)
}

func (s *Server) deleteTag(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid tag id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if err := s.Store.DeleteTag(ctx, int64(id)); err != nil {
		return InternalError("delete tag failed", err.Error())
	}
	return OK(c, fiber.Map{"deleted": id})
}
