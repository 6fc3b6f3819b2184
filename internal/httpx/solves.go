package httpx

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"cubedeck/internal/esx"
	"cubedeck/internal/model"
	"cubedeck/internal/store"
)

// CreateSolveRequest is the request body for recording a solve.
type CreateSolveRequest struct {
	Duration     int64    `json:"duration"`
	Scramble     string   `json:"scramble"`
	ScrambleType string   `json:"scrambleType"`
	SessionID    int64    `json:"sessionId"`
	PageID       string   `json:"pageId"`
	Tags         []string `json:"tags"`
	Penalty      string   `json:"penalty"`
	Comment      string   `json:"comment"`
}

// UpdateSolveRequest is the partial update body for a solve.
type UpdateSolveRequest struct {
	Penalty   *string   `json:"penalty"`
	Comment   *string   `json:"comment"`
	Tags      *[]string `json:"tags"`
	SessionID *int64    `json:"sessionId"`
}

func (s *Server) createSolve(c *fiber.Ctx) error {
	var req CreateSolveRequest
	if err := c.BodyParser(&req); err != nil || req.Duration <= 0 {
		return BadRequest("duration required", nil)
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if req.SessionID == 0 {
		scrambleType := lo.Ternary(req.ScrambleType != "", req.ScrambleType, "333")
		session, err := s.Store.GetOrCreateDefaultSession(ctx, scrambleType)
		if err != nil {
			return InternalError("resolve session failed", err.Error())
		}
		req.SessionID = session.ID
	}

	solve := &model.Solve{
		Duration:     req.Duration,
		Scramble:     req.Scramble,
		ScrambleType: req.ScrambleType,
		SessionID:    req.SessionID,
		PageID:       req.PageID,
		Tags:         req.Tags,
		Penalty:      model.Penalty(lo.Ternary(req.Penalty != "", req.Penalty, "none")),
		Comment:      req.Comment,
	}
	if _, err := s.Store.AddSolve(ctx, solve); err != nil {
		return InternalError("save solve failed", err.Error())
	}

	if err := s.publishEvent(ctx, "solve.created", solve); err != nil {
		httpxLogger.Sugar().Warnf("publish solve.created: %v", err)
	}
	if err := esx.IndexSolve(ctx, s.ES, esx.DocFromSolve(solve)); err != nil {
		httpxLogger.Sugar().Warnf("index solve %d: %v", solve.ID, err)
	}
	return Created(c, solve)
}

func (s *Server) listSolves(c *fiber.Ctx) error {
	ctx, cancel := handlerContext(c)
	defer cancel()

	limit := lo.Clamp(c.QueryInt("limit", 50), 1, 500)
	offset := c.QueryInt("offset", 0)

	var (
		solves []*model.Solve
		err    error
	)
	switch {
	case c.Query("session_id", "") != "":
		solves, err = s.Store.SolvesBySession(ctx, int64(c.QueryInt("session_id")))
	case c.Query("page_id", "") != "":
		solves, err = s.Store.SolvesByPage(ctx, c.Query("page_id"))
	default:
		solves, err = s.Store.QuerySolves(ctx, model.SolveFilter{}, 0)
	}
	if err != nil {
		return InternalError("query solves failed", err.Error())
	}

	total := len(solves)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	window := solves[offset:end]

	nextOff := offset + len(window)
	meta := PageMeta{Limit: limit, Offset: offset, Count: len(window),
		NextOffset: &nextOff, HasMore: end < total}
	return List(c, window, meta)
}

func (s *Server) getSolve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid solve id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	solve, ok, err := s.Store.GetSolve(ctx, int64(id))
	if err != nil {
		return InternalError("get solve failed", err.Error())
	}
	if !ok {
		return NotFound("solve not found")
	}
	return OK(c, solve)
}

func (s *Server) updateSolve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid solve id", c.Params("id"))
	}
	var req UpdateSolveRequest
	if err := c.BodyParser(&req); err != nil {
		return BadRequest("invalid body", err.Error())
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if _, ok, _ := s.Store.GetSolve(ctx, int64(id)); !ok {
		return NotFound("solve not found")
	}

	upd := store.SolveUpdate{
		Comment:   req.Comment,
		Tags:      req.Tags,
		SessionID: req.SessionID,
	}
	if req.Penalty != nil {
		p := model.Penalty(*req.Penalty)
		upd.Penalty = &p
	}
	if err := s.Store.UpdateSolve(ctx, int64(id), upd); err != nil {
		return InternalError("update solve failed", err.Error())
	}

	solve, _, _ := s.Store.GetSolve(ctx, int64(id))
	if err := esx.IndexSolve(ctx, s.ES, esx.DocFromSolve(solve)); err != nil {
		httpxLogger.Sugar().Warnf("reindex solve %d: %v", id, err)
	}
	return OK(c, solve)
}

func (s *Server) deleteSolve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return BadRequest("invalid solve id", c.Params("id"))
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	if _, ok, _ := s.Store.GetSolve(ctx, int64(id)); !ok {
		return NotFound("solve not found")
	}
	if err := s.Store.DeleteSolve(ctx, int64(id)); err != nil {
		return InternalError("delete solve failed", err.Error())
	}
	if err := esx.DeleteSolve(ctx, s.ES, int64(id)); err != nil {
		httpxLogger.Sugar().Warnf("deindex solve %d: %v", id, err)
	}
	return OK(c, fiber.Map{"deleted": id})
}

func (s *Server) searchSolves(c *fiber.Ctx) error {
	query := c.Query("q", "")
	if query == "" {
		return BadRequest("q required", nil)
	}
	ctx, cancel := handlerContext(c)
	defer cancel()

	from := c.QueryInt("from", 0)
	size := lo.Clamp(c.QueryInt("size", 20), 1, 100)
	out, err := esx.SearchSolves(ctx, s.ES, query, from, size)
	if err != nil {
		return InternalError("search failed", err.Error())
	}
	return OK(c, out)
}

func (s *Server) publishEvent(ctx context.Context, routingKey string, payload any) error {
	if s.MQ == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.MQ.Publish(ctx, routingKey, body)
}
