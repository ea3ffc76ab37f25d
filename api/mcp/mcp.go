// Package mcp provides an MCP (Model Context Protocol) server exposing kauni's
// document search and tourism chat as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/utils"
)

type Config struct {
	// Retriever serves the search tool
	Retriever *rag.Retriever

	// Pipeline serves the chat tool
	Pipeline *rag.Pipeline

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the search and chat tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "kauni",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Retriever == nil {
			return nil, errors.New("retriever is required")
		}
		if c.Pipeline == nil {
			return nil, errors.New("pipeline is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        searchToolName,
			Description: searchDescription,
		}, s.handleSearch)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        chatToolName,
			Description: chatDescription,
		}, s.handleChat)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
