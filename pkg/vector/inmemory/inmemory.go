// Package inmemory provides a brute-force, in-process document driver for
// tests, demos and small corpora.
package inmemory

import (
	"context"
	"maps"
	"math"
	"sort"
	"sync"

	"github.com/papercomputeco/kauni/pkg/vector"
)

// Driver implements vector.Driver with cosine distance over an in-memory map.
type Driver struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]vector.Document
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string]vector.Document),
	}
}

// Upsert stores copies of docs, replacing any existing document with the same ID.
func (d *Driver) Upsert(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if _, ok := d.docs[doc.ID]; !ok {
			d.order = append(d.order, doc.ID)
		}
		doc.Metadata = maps.Clone(doc.Metadata)
		doc.Embedding = append([]float32(nil), doc.Embedding...)
		d.docs[doc.ID] = doc
	}

	return nil
}

// Query ranks every stored document by cosine distance to embedding.
func (d *Driver) Query(_ context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	d.mu.RLock()
	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, id := range d.order {
		doc := d.docs[id]
		results = append(results, vector.QueryResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: maps.Clone(doc.Metadata),
			Distance: CosineDistance(embedding, doc.Embedding),
		})
	}
	d.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Scan returns up to k documents in insertion order.
func (d *Driver) Scan(_ context.Context, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, min(k, len(d.order)))
	for _, id := range d.order {
		if len(results) == k {
			break
		}
		doc := d.docs[id]
		results = append(results, vector.QueryResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: maps.Clone(doc.Metadata),
		})
	}
	return results, nil
}

// Count returns the number of stored documents.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs), nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

// CosineDistance returns 1 - cosine similarity, clamped to [0, 2]. Vectors of
// differing length or zero magnitude are maximally distant.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}

	dist := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	return float32(min(max(dist, 0), 2))
}

var _ vector.Driver = (*Driver)(nil)
