// Package api provides the HTTP API server for chatting with the tourism
// guide, searching and ingesting documents, and managing the persona.
package api

import (
	"context"
	"net/http"

	"github.com/papercomputeco/kauni/pkg/eventstream"
	"github.com/papercomputeco/kauni/pkg/rag"
	"github.com/papercomputeco/kauni/pkg/vector"
)

// Indexer writes documents to the store.
type Indexer interface {
	Index(ctx context.Context, docs []vector.Document) (int, error)
}

// Fetcher produces documents from an upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]vector.Document, error)
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	Pipeline  *rag.Pipeline
	Retriever *rag.Retriever
	Personas  *rag.PersonaStore

	// PersonaSaver persists persona updates. Optional.
	PersonaSaver func(rag.Persona) error

	Indexer Indexer

	// KTO fetches open-data tourism records. Optional; without it the KTO
	// ingest route reports the missing service key.
	KTO Fetcher

	// Driver and Table back the store health probe.
	Driver vector.Driver
	Table  string

	// Publisher receives feedback events. Optional.
	Publisher eventstream.Publisher

	// MCP is mounted at /mcp when set.
	MCP http.Handler
}
