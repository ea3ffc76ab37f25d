package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/kauni/pkg/rag"
)

var (
	chatToolName    = "chat"
	chatDescription = "Ask Kauni, the Daejeon tourism guide, a question in Korean. Returns the answer with the contexts it was grounded on, the answer source (rag, fallback or guardrail) and a confidence level."
)

// ChatInput represents the input arguments for the chat tool.
type ChatInput struct {
	Query string `json:"query" jsonschema:"the tourism question to answer"`
}

func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, rag.ChatResult, error) {
	if strings.TrimSpace(input.Query) == "" {
		return errorResult("query is required"), rag.ChatResult{}, nil
	}

	result := s.config.Pipeline.Answer(ctx, input.Query)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Answer},
		},
	}, result, nil
}
