// Package ollama implements pkg/embedding's Embedder client for Ollama's embedding APIs
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/embeddings"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	// all-minilm produces 384 dimensional vectors.
	DefaultEmbeddingModel = "all-minilm"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	modelCheckTimeout = 30 * time.Second
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client

	// checkMu guards the model availability check. Once Ollama has
	// answered /api/show its verdict is kept; transport failures are retried.
	checkMu  sync.Mutex
	checked  bool
	checkErr error
}

// EmbedderConfig holds configuration for the Ollama embedder.
type EmbedderConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use (e.g., "all-minilm", "nomic-embed-text").
	// Defaults to DefaultEmbeddingModel if empty.
	Model string
}

// embedRequest is the request body for Ollama's embedding API.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type showRequest struct {
	Model string `json:"model"`
}

// NewEmbedder creates a new embedder using Ollama's embedding API.
// The model is not contacted until the first Embed call.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed converts texts into vector embeddings with a single batch request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.checkModel(ctx); err != nil {
		return nil, err
	}

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var embedResp embedResponse
	if err := e.post(ctx, "/api/embed", embedRequest{Model: e.model, Input: texts}, &embedResp); err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama returned %d embeddings for %d inputs",
			vector.ErrEmbedding, len(embedResp.Embeddings), len(texts))
	}

	return embedResp.Embeddings, nil
}

// checkModel verifies the configured model is available locally. The check
// runs detached from the caller's cancellation.
func (e *Embedder) checkModel(ctx context.Context) error {
	e.checkMu.Lock()
	defer e.checkMu.Unlock()

	if e.checked {
		return e.checkErr
	}

	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), modelCheckTimeout)
	defer cancel()

	err := e.post(checkCtx, "/api/show", showRequest{Model: e.model}, nil)
	var statusErr *statusError
	switch {
	case err == nil:
		e.checked = true
	case errors.As(err, &statusErr):
		e.checked = true
		e.checkErr = fmt.Errorf("%w: embedding model %q unavailable at %s: %v", config.ErrConfiguration, e.model, e.baseURL, err)
	default:
		return fmt.Errorf("%w: checking model %q: %v", vector.ErrEmbedding, e.model, err)
	}

	return e.checkErr
}

// statusError is a non-200 answer from Ollama.
type statusError struct {
	code int
	body string
}

func (s *statusError) Error() string {
	return fmt.Sprintf("ollama returned status %d: %s", s.code, s.body)
}

func (e *Embedder) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &statusError{code: resp.StatusCode, body: string(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
