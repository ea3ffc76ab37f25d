// Package vector provides interfaces and implementations for document storage
// and nearest-neighbour retrieval.
package vector

import "context"

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document. Re-upserting an existing ID
	// fully replaces the stored document.
	ID string

	// Content is the text the embedding was computed from.
	Content string

	// Metadata is an arbitrary key/value mapping carried alongside the content.
	Metadata map[string]any

	// Embedding is the vector representation of Content.
	Embedding []float32
}

// QueryResult is a document returned by a query or scan, without its embedding.
type QueryResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`

	// Distance is non-negative; smaller means more similar. Unranked scans
	// report 0.
	Distance float32 `json:"distance"`
}

// Driver handles storage and retrieval of embedded documents.
type Driver interface {
	// Upsert stores documents with their embeddings.
	// If a document with the same ID already exists, it is replaced.
	Upsert(ctx context.Context, docs []Document) error

	// Query finds at most k documents nearest to the given embedding, ordered
	// by ascending distance.
	Query(ctx context.Context, embedding []float32, k int) ([]QueryResult, error)

	// Scan returns at most k documents in no particular order, each with
	// distance 0.
	Scan(ctx context.Context, k int) ([]QueryResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}

// SourceLabel returns the "source" metadata entry as a string, or "" when the
// entry is absent or not a string.
func (r QueryResult) SourceLabel() string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata["source"].(string)
	return s
}
