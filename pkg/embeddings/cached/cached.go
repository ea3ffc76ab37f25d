// Package cached wraps an embeddings.Embedder with an in-process LRU cache so
// repeated query texts are embedded once.
package cached

import (
	"context"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/papercomputeco/kauni/pkg/embeddings"
)

// Embedder caches embeddings per input text.
type Embedder struct {
	inner embeddings.Embedder
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache holding up to size embeddings.
func New(inner embeddings.Embedder, size int) (*Embedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}

	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed serves cached texts from memory and forwards the rest to the wrapped
// embedder in a single batch.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var (
		missing    []string
		missingIdx []int
	)
	for i, text := range texts {
		if emb, ok := e.cache.Get(text); ok {
			out[i] = slices.Clone(emb)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := e.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d embeddings for %d inputs", len(fresh), len(missing))
	}

	for j, idx := range missingIdx {
		out[idx] = fresh[j]
		e.cache.Add(missing[j], slices.Clone(fresh[j]))
	}

	return out, nil
}

// Len reports how many embeddings are cached.
func (e *Embedder) Len() int {
	return e.cache.Len()
}

// Close purges the cache and closes the wrapped embedder.
func (e *Embedder) Close() error {
	e.cache.Purge()
	return e.inner.Close()
}

var _ embeddings.Embedder = (*Embedder)(nil)
