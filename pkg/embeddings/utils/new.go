// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/kauni/pkg/embeddings"
	"github.com/papercomputeco/kauni/pkg/embeddings/cached"
	"github.com/papercomputeco/kauni/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string

	// CacheSize wraps the embedder in an LRU cache when positive.
	CacheSize int
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	var (
		e   embeddings.Embedder
		err error
	)

	switch o.ProviderType {
	case "ollama":
		e, err = ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
	if err != nil {
		return nil, err
	}

	if o.CacheSize > 0 {
		return cached.New(e, o.CacheSize)
	}
	return e, nil
}
