package api

import (
	"github.com/gofiber/fiber/v2"
)

// PersonaUpdate is the body of PUT /api/persona. An empty system prompt is
// ignored; an explicit empty style clears the style.
type PersonaUpdate struct {
	System *string `json:"system"`
	Style  *string `json:"style"`
}

func (s *Server) handleGetPersona(c *fiber.Ctx) error {
	return c.JSON(s.config.Personas.Get())
}

func (s *Server) handlePutPersona(c *fiber.Ctx) error {
	var req PersonaUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	persona := s.config.Personas.Update(req.System, req.Style)
	s.logger.Info("persona updated",
		"system_changed", req.System != nil && *req.System != "",
		"style_changed", req.Style != nil,
	)

	if s.config.PersonaSaver != nil {
		if err := s.config.PersonaSaver(persona); err != nil {
			s.logger.Warn("failed to persist persona", "error", err)
		}
	}

	return c.JSON(OkResponse{OK: true})
}
