package httpx

import (
	"github.com/gofiber/fiber/v2"

	"cubedeck/internal/model"
	"cubedeck/internal/stats"
)

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	Name  string `json:"name"`
	Event string `json:"event"`
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	ctx, cancel := handlerContext(c)
	defer cancel()

	if event := c.Query("event", ""); event != "" {
		sessions, err := s.Store.SessionsByEvent(ctx, event)
		if err != nil {
			return InternalError("query sessions failed", err.Error())
		}
		return OK(c, sessions)
	}
	sessions, err := s.Store.ListSessions(ctx)
	if err != nil {
		return InternalError("query sessions failed", err.Error())
	}
	return OK(c, sessions)
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.Event == "" {
		return BadRequest("name and event required", nil)
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	session := &model.Session{Name: req.Name, Event: req.Event}
	if _, err := s.Store.CreateSession(ctx, session); err != nil {
		return InternalError("create session failed", err.Error())
	}
	return Created(c, session)
}

func (s *Server) getSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid session id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	session, ok, err := s.Store.GetSession(ctx, int64(id))
	if err != nil {
		return InternalError("get session failed", err.Error())
	}
	if !ok {
		return NotFound("session not found")
	}
	return OK(c, session)
}

// sessionStats computes WCA statistics over the session's solves.
func (s *Server) sessionStats(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid session id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if _, ok, _ := s.Store.GetSession(ctx, int64(id)); !ok {
		return NotFound("session not found")
	}
	solves, err := s.Store.SolvesBySession(ctx, int64(id))
	if err != nil {
		return InternalError("query solves failed", err.Error())
	}
	return OK(c, stats.Compute(solves))
}

func (s *Server) archiveSession(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid session id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if _, ok, _ := s.Store.GetSession(ctx, int64(id)); !ok {
		return NotFound("session not found")
	}
	if err := s.Store.SetSessionArchived(ctx, int64(id), true); err != nil {
		return InternalError("archive session failed", err.Error())
	}
	session, _, _ := s.Store.GetSession(ctx, int64(id))
	return OK(c, session)
}
