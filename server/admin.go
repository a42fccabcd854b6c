package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/holaplex/imgopt/cmn"
)

type invalidationReq struct {
	URLs []string `json:"urls"`
}

// createInvalidation implements GET|POST /create_invalidation, gated by
// requireAdmin.
func (s *Server) createInvalidation(c *fiber.Ctx) error {
	var req invalidationReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return cmn.NewErrStatus(fiber.StatusBadRequest, "invalid request body: %v", err)
		}
	}

	result, err := s.cdn.Invalidate(c.Context(), req.URLs)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
