package api

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OkResponse acknowledges a write.
type OkResponse struct {
	OK bool `json:"ok"`
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Tourism AI Backend running"})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
