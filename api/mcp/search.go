package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apisearch "github.com/papercomputeco/kauni/api/search"
)

var (
	searchToolName    = "search"
	searchDescription = "Search the Daejeon tourism document store. Returns the most relevant documents for the query text with their source metadata and distance."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	K     int    `json:"k,omitempty" jsonschema:"number of results to return (default: 4, max: 20)"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, apisearch.SearchOutput, error) {
	output, err := apisearch.Search(ctx, s.config.Retriever, input.Query, input.K, s.config.Logger)
	if err != nil {
		return errorResult(fmt.Sprintf("Invalid search request: %v", err)), apisearch.SearchOutput{}, nil
	}

	// Tools returning structured content also return the serialized JSON in
	// a TextContent block for older clients.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal search output", "error", err)
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), apisearch.SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *output, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
