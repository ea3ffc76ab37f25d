package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/kauni/pkg/vector"
)

// DBHealthResponse reports whether the document store answers.
type DBHealthResponse struct {
	OK      bool   `json:"ok"`
	Table   string `json:"table,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleDBHealth counts the stored documents. A reachable store that rejects
// the count reports a warning; an unreachable store reports an error. The
// status is always 200.
func (s *Server) handleDBHealth(c *fiber.Ctx) error {
	if s.config.Driver == nil {
		return c.JSON(DBHealthResponse{OK: false, Error: "document store is not configured"})
	}

	count, err := s.config.Driver.Count(c.Context())
	if err != nil {
		if errors.Is(err, vector.ErrUnavailable) {
			return c.JSON(DBHealthResponse{OK: false, Error: err.Error()})
		}
		return c.JSON(DBHealthResponse{OK: true, Warning: err.Error()})
	}

	return c.JSON(DBHealthResponse{OK: true, Table: s.config.Table, Count: &count})
}
