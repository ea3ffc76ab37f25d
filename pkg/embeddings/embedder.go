// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts texts into vector embeddings. The result has one
	// embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
