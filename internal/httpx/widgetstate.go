package httpx

import "github.com/gofiber/fiber/v2"

func (s *Server) getWidgetState(c *fiber.Ctx) error {
	state, ok := s.State.GetState(c.Params("instanceId"))
	if !ok {
		return NotFound("widget state not found")
	}
	return OK(c, state)
}

func (s *Server) putWidgetState(c *fiber.Ctx) error {
	var state map[string]any
	if err := c.BodyParser(&state); err != nil {
		return BadRequest("invalid body", err.Error())
	}
	s.State.SetState(c.Params("instanceId"), state)
	return OK(c, state)
}

func (s *Server) patchWidgetState(c *fiber.Ctx) error {
	var partial map[string]any
	if err := c.BodyParser(&partial); err != nil {
		return BadRequest("invalid body", err.Error())
	}
	id := c.Params("instanceId")
	s.State.UpdateState(id, partial)
	state, _ := s.State.GetState(id)
	return OK(c, state)
}

func (s *Server) deleteWidgetState(c *fiber.Ctx) error {
	id := c.Params("instanceId")
	s.State.DeleteState(id)
	return OK(c, fiber.Map{"deleted": id})
}
