package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query string `json:"query"`
}

// handleChat answers a tourism question. Retrieval and generation failures
// are reflected in the answer's source and confidence, never in the status.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return badRequest(c, "query is required")
	}

	return c.JSON(s.config.Pipeline.Answer(c.Context(), req.Query))
}
