package httpx

import (
	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/scramble"
	"cubedeck/internal/theme"
)

func (s *Server) getTheme(c *fiber.Ctx) error {
	t := s.Theme.Get()
	return OK(c, fiber.Map{"theme": t, "cssVariables": t.CSSVariables()})
}

func (s *Server) putTheme(c *fiber.Ctx) error {
	var t theme.Theme
	if err := c.BodyParser(&t); err != nil || t.Name == "" {
		return BadRequest("theme name required", nil)
	}
	if err := s.Theme.Set(t); err != nil {
		return InternalError("save theme failed", err.Error())
	}
	return OK(c, t)
}

func (s *Server) resetTheme(c *fiber.Ctx) error {
	if err := s.Theme.Reset(); err != nil {
		return InternalError("reset theme failed", err.Error())
	}
	return OK(c, s.Theme.Get())
}

// generateScramble hands out a one-off scramble for the given event code.
func (s *Server) generateScramble(c *fiber.Ctx) error {
	eventCode := c.Params("eventCode")
	ctx, cancel := handlerContext(c)
	defer cancel()

	seq, err := s.Scrambles.Generate(ctx, eventCode)
	if err != nil {
		return InternalError("generate scramble failed", err.Error())
	}
	return OK(c, fiber.Map{
		"scramble":  seq,
		"eventCode": eventCode,
		"types":     scramble.TypesForCategory(scramble.DefaultCategoryID),
	})
}
