package api

import (
	"errors"
	"io/fs"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/kauni/pkg/ingest"
	"github.com/papercomputeco/kauni/pkg/vector"
)

// IngestRequest is the body of POST /api/ingest.
type IngestRequest struct {
	Path string `json:"path"`
}

// IngestResponse reports how many documents were indexed.
type IngestResponse struct {
	Indexed int `json:"indexed"`
}

// handleIngest indexes the text and markdown files below a server-side path.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Path == "" {
		return badRequest(c, "path is required")
	}

	docs, err := ingest.ReadTextFiles(req.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(IngestResponse{Indexed: 0})
		}
		s.logger.Error("failed to read ingest path", "path", req.Path, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return s.index(c, "fs", docs)
}

// handleIngestKTO fetches and indexes the open-data tourism records.
func (s *Server) handleIngestKTO(c *fiber.Ctx) error {
	if s.config.KTO == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "KTO_SERVICE_KEY가 필요합니다"})
	}

	docs, err := s.config.KTO.Fetch(c.Context())
	if err != nil {
		s.logger.Error("failed to fetch kto records", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}

	return s.index(c, "kto", docs)
}

func (s *Server) index(c *fiber.Ctx, source string, docs []vector.Document) error {
	n, err := s.config.Indexer.Index(c.Context(), docs)
	if err != nil {
		s.logger.Error("indexing failed",
			"source", source,
			"indexed", n,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(IngestResponse{Indexed: n})
}
