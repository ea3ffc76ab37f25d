package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/kauni/pkg/eventstream"
)

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Feedback) == "" {
		return badRequest(c, "feedback is required")
	}

	if s.config.Publisher != nil {
		event := eventstream.NewFeedbackEvent(req.Feedback)
		if err := s.config.Publisher.PublishFeedback(c.Context(), event); err != nil {
			s.logger.Warn("failed to publish feedback",
				"event_id", event.EventID,
				"error", err,
			)
		}
	}

	return c.JSON(OkResponse{OK: true})
}
