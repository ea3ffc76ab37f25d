// Package llm provides provider-agnostic chat completion callers for the
// hosted and local language models kauni generates answers with.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

var (
	// ErrGeneration is returned when the model call fails or returns no text.
	ErrGeneration = errors.New("generation failed")

	// ErrMissingCredentials is returned when a hosted provider has no API key.
	ErrMissingCredentials = errors.New("missing API credentials")
)

// Caller sends a chat request to a language model.
type Caller interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Provider names the backing provider, e.g. "openai".
	Provider() string
}

// CallerConfig holds configuration for creating a Caller.
type CallerConfig struct {
	Provider string // "openai", "anthropic", or "ollama"
	Model    string // e.g. "gpt-4o-mini", "claude-3-5-haiku-latest"
	APIKey   string // resolved API key; empty for ollama
	BaseURL  string // override base URL

	// HTTPClient defaults to a client with a 60 second timeout.
	HTTPClient *http.Client
}

// NewCaller creates a Caller based on the provided configuration. A hosted
// provider without an API key still yields a Caller; every Chat call then
// fails with ErrMissingCredentials.
func NewCaller(cfg CallerConfig) (Caller, error) {
	provider := strings.ToLower(cfg.Provider)

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	base := httpCaller{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}

	switch provider {
	case ProviderOpenAI, "":
		base.provider = ProviderOpenAI
		base.model = orDefault(base.model, "gpt-4o-mini")
		base.baseURL = orDefault(base.baseURL, "https://api.openai.com")
		return &openAICaller{base}, nil

	case ProviderAnthropic:
		base.provider = ProviderAnthropic
		base.model = orDefault(base.model, "claude-3-5-haiku-latest")
		base.baseURL = orDefault(base.baseURL, "https://api.anthropic.com")
		return &anthropicCaller{base}, nil

	case ProviderOllama:
		base.provider = ProviderOllama
		base.model = orDefault(base.model, "llama3.2")
		base.baseURL = orDefault(base.baseURL, "http://localhost:11434")
		return &ollamaCaller{base}, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// httpCaller holds what every HTTP-backed caller shares.
type httpCaller struct {
	provider string
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
}

func (c *httpCaller) Provider() string {
	return c.provider
}

// postJSON sends body to path and decodes a 200 response into out.
func (c *httpCaller) postJSON(ctx context.Context, path string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request: %v", ErrGeneration, c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s API error (status %d): %s", ErrGeneration, c.provider, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %v", ErrGeneration, err)
	}

	return nil
}

func (c *httpCaller) requireKey() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, c.provider)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
