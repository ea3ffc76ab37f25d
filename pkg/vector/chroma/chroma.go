// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/papercomputeco/kauni/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing documents.
	DefaultCollectionName = "documents"

	defaultMaxRetries    = 5
	defaultRetryDelay    = 500 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds the connection attempts made while Chroma starts up.
	MaxRetries int

	// RetryDelay is the initial delay between attempts, doubling up to
	// MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma driver, creating the collection if needed.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cmp.Or(c.RetryDelay, defaultRetryDelay)
	b.MaxInterval = cmp.Or(c.MaxRetryDelay, defaultMaxRetryDelay)
	b.MaxElapsedTime = 0

	attempts := 0
	collectionID, err := backoff.RetryWithData(func() (string, error) {
		attempts++
		id, err := d.getOrCreateCollection(ctx)
		if err != nil {
			logger.Debug("chroma not ready", "attempt", attempts, "error", err)
		}
		return id, err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %v",
			vector.ErrStore, collectionName, attempts, err)
	}
	d.collectionID = collectionID

	logger.Info("connected to Chroma",
		"url", c.URL,
		"collection", collectionName,
		"collection_id", collectionID,
	)

	return d, nil
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var collection chromaCollection

	status, err := d.do(ctx, http.MethodGet, collectionsPath+"/"+d.collectionName, nil, &collection)
	if err == nil {
		return collection.ID, nil
	}
	if status != http.StatusNotFound && status != 0 {
		d.logger.Debug("chroma collection lookup failed, creating", "status", status, "error", err)
	}

	if _, err := d.do(ctx, http.MethodPost, collectionsPath, map[string]string{"name": d.collectionName}, &collection); err != nil {
		return "", err
	}

	return collection.ID, nil
}

// Upsert stores documents with their embeddings, replacing existing IDs.
func (d *Driver) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := chromaUpsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}

	for i, doc := range docs {
		req.IDs[i] = doc.ID
		req.Embeddings[i] = doc.Embedding
		req.Metadatas[i] = flattenMetadata(doc.Metadata)
		req.Documents[i] = doc.Content
	}

	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("upsert"), req, nil); err != nil {
		return fmt.Errorf("%w: upserting documents: %v", vector.ErrStore, err)
	}

	d.logger.Debug("upserted documents to chroma", "count", len(docs))

	return nil
}

// Query finds the k documents nearest to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	req := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp chromaQueryResponse
	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("query"), req, &resp); err != nil {
		return nil, fmt.Errorf("%w: querying documents: %v", vector.ErrStore, err)
	}

	// Only one embedding is queried so only the first group matters.
	if len(resp.IDs) == 0 {
		return []vector.QueryResult{}, nil
	}

	ids := resp.IDs[0]
	results := make([]vector.QueryResult, 0, len(ids))
	for i, id := range ids {
		r := vector.QueryResult{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			r.Content = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			r.Distance = max(resp.Distances[0][i], 0)
		}
		results = append(results, r)
	}

	d.logger.Debug("queried chroma", "results", len(results))

	return results, nil
}

// Scan returns up to k documents without ranking.
func (d *Driver) Scan(ctx context.Context, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = 1
	}

	req := chromaGetRequest{
		Limit:   k,
		Include: []string{"documents", "metadatas"},
	}

	var resp chromaGetResponse
	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("get"), req, &resp); err != nil {
		return nil, fmt.Errorf("%w: scanning documents: %v", vector.ErrStore, err)
	}

	results := make([]vector.QueryResult, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		r := vector.QueryResult{ID: id}
		if i < len(resp.Documents) {
			r.Content = resp.Documents[i]
		}
		if i < len(resp.Metadatas) {
			r.Metadata = resp.Metadatas[i]
		}
		results = append(results, r)
	}

	return results, nil
}

// Count returns the number of documents in the collection.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := d.do(ctx, http.MethodGet, d.collectionPath("count"), nil, &n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", vector.ErrStore, err)
	}
	return n, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) collectionPath(op string) string {
	return fmt.Sprintf("%s/%s/%s", collectionsPath, d.collectionID, op)
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
// The returned status is 0 when no response was received.
func (d *Driver) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// flattenMetadata converts metadata into values Chroma accepts: strings,
// numbers and booleans. Anything else is rendered with %v.
func flattenMetadata(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		switch v.(type) {
		case string, bool, int, int32, int64, float32, float64:
			out[k] = v
		case nil:
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

var _ vector.Driver = (*Driver)(nil)
