package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/ranking"
)

func (s *Server) createSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	sess, err := s.manager.Create(c.UserContext(), req.Metadata)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(sess))
}

func (s *Server) getSession(c *fiber.Ctx) error {
	sess, err := s.manager.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toSessionResponse(sess))
}

func (s *Server) query(c *fiber.Ctx) error {
	var req QueryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := s.manager.QueryWithRetry(c.UserContext(), c.Params("id"), req.Message, s.attempts, s.retryDelay)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) endSession(c *fiber.Ctx) error {
	sess, err := s.manager.End(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toSessionResponse(sess))
}

func (s *Server) acceptSuggestion(c *fiber.Ctx) error {
	var req SelectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sess, err := s.manager.AcceptSuggestion(c.UserContext(), c.Params("id"), core.Field(req.Field), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(toSessionResponse(sess))
}

func (s *Server) addCustom(c *fiber.Ctx) error {
	var req SelectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sess, err := s.manager.AddCustom(c.UserContext(), c.Params("id"), core.Field(req.Field), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(toSessionResponse(sess))
}

func (s *Server) badge(c *fiber.Ctx) error {
	position, err := strconv.Atoi(c.Params("position"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "position must be an integer")
	}
	return c.JSON(BadgeResponse{Position: position, Tier: ranking.AssignBadge(position)})
}

func (s *Server) residenceBadges(c *fiber.Ctx) error {
	if s.catalog == nil {
		return fiber.NewError(fiber.StatusNotFound, "no catalog configured")
	}

	id := c.Params("id")
	res, err := s.catalog.GetResidence(c.UserContext(), id)
	if err != nil {
		return err
	}
	badges := ranking.Badges(res)
	if badges == nil {
		badges = []ranking.Badge{}
	}
	return c.JSON(ResidenceBadgesResponse{ResidenceId: id, Badges: badges})
}
