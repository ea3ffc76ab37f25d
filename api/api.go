package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is the kauni API server
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// Components are injected so they can be shared with the MCP server.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if config.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}
	if config.Retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if config.Personas == nil {
		return nil, errors.New("persona store is required")
	}
	if config.Indexer == nil {
		return nil, errors.New("indexer is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(compress.New())

	app.Get("/", s.handleRoot)
	app.Get("/ping", s.handlePing)

	v := app.Group("/api")
	v.Get("/health", s.handleHealth)
	v.Post("/chat", s.handleChat)
	v.Get("/search", s.handleSearchQuery)
	v.Post("/search", s.handleSearchBody)
	v.Post("/ingest", s.handleIngest)
	v.Post("/ingest/kto", s.handleIngestKTO)
	v.Get("/persona", s.handleGetPersona)
	v.Put("/persona", s.handlePutPersona)
	v.Post("/feedback", s.handleFeedback)
	v.Get("/db/health", s.handleDBHealth)

	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
