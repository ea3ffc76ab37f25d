package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apisearch "github.com/papercomputeco/kauni/api/search"
)

// handleSearchQuery handles GET /api/search requests.
// Query parameters:
//   - q (required): the search query text
//   - k (optional, default 4, max 20): number of results to return
func (s *Server) handleSearchQuery(c *fiber.Ctx) error {
	k := 0
	if kStr := c.Query("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil {
			return badRequest(c, apisearch.ErrInvalidK.Error())
		}
		k = parsed
	}

	return s.search(c, c.Query("q"), k)
}

// handleSearchBody handles POST /api/search with a {queryText, k} body.
func (s *Server) handleSearchBody(c *fiber.Ctx) error {
	var input apisearch.SearchInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}

	return s.search(c, input.Query, input.K)
}

func (s *Server) search(c *fiber.Ctx, query string, k int) error {
	output, err := apisearch.Search(c.Context(), s.config.Retriever, query, k, s.logger)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(output)
}
