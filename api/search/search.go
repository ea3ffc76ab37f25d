// Package search provides shared search types and logic for document search.
// It is used by both the REST API endpoint and the MCP server tool.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const (
	// DefaultK is the number of results returned when k is not given.
	DefaultK = 4

	// MaxK is the largest accepted k.
	MaxK = 20
)

var (
	// ErrEmptyQuery is returned when the query text is blank.
	ErrEmptyQuery = errors.New("query is required")

	// ErrInvalidK is returned when k is outside [1, MaxK].
	ErrInvalidK = fmt.Errorf("k must be between 1 and %d", MaxK)
)

// SearchInput represents the input arguments for a search request.
type SearchInput struct {
	Query string `json:"queryText"`
	K     int    `json:"k,omitempty"`
}

// SearchOutput represents the output of a search operation.
type SearchOutput struct {
	Query   string               `json:"query"`
	Results []vector.QueryResult `json:"results"`
	Count   int                  `json:"count"`

	// Degraded lists the retrieval stages that failed, if any.
	Degraded []rag.Diagnostic `json:"degraded,omitempty"`
}

// Validate checks the query and resolves k, applying DefaultK when k is 0.
func Validate(query string, k int) (int, error) {
	if query == "" {
		return 0, ErrEmptyQuery
	}
	if k == 0 {
		return DefaultK, nil
	}
	if k < 1 || k > MaxK {
		return 0, ErrInvalidK
	}
	return k, nil
}

// Search runs the retrieval cascade for query and returns its contexts
// without generating an answer.
func Search(
	ctx context.Context,
	retriever *rag.Retriever,
	query string,
	k int,
	logger *slog.Logger,
) (*SearchOutput, error) {
	k, err := Validate(query, k)
	if err != nil {
		return nil, err
	}

	logger.Debug("search request",
		"query", query,
		"k", k,
	)

	results, trail := retriever.Retrieve(ctx, query, k)

	return &SearchOutput{
		Query:    query,
		Results:  results,
		Count:    len(results),
		Degraded: trail,
	}, nil
}
