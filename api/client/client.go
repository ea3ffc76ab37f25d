// Package apiclient talks to a running kauni API server for the chat and
// search commands.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/papercomputeco/kauni/api"
	apisearch "github.com/papercomputeco/kauni/api/search"
	"github.com/papercomputeco/kauni/pkg/rag"
)

// Client calls the kauni HTTP API rooted at a base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New parses target (scheme, host and port) into a Client.
func New(target string) (*Client, error) {
	base, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	return &Client{base: base, http: http.DefaultClient}, nil
}

// Chat asks the guide a question.
func (c *Client) Chat(ctx context.Context, question string) (*rag.ChatResult, error) {
	var out rag.ChatResult
	if err := c.do(ctx, http.MethodPost, "/api/chat", nil, api.ChatRequest{Query: question}, &out); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &out, nil
}

// Search returns the k documents nearest to query.
func (c *Client) Search(ctx context.Context, query string, k int) (*apisearch.SearchOutput, error) {
	params := url.Values{"q": {query}, "k": {strconv.Itoa(k)}}

	var out apisearch.SearchOutput
	if err := c.do(ctx, http.MethodGet, "/api/search", params, nil, &out); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := *c.base
	u.Path = path
	u.RawQuery = params.Encode()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to kauni API at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
