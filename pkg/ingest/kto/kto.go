// Package kto fetches tourism records from the Korea Tourism Organization
// open-data API and normalizes them into documents.
package kto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/papercomputeco/kauni/pkg/config"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const (
	// LocalHubEndpoint lists regional hub tourist attractions.
	LocalHubEndpoint = "http://apis.data.go.kr/B551011/LocgoHubTarService1/areaBasedList1"

	// RelatedEndpoint lists attractions related to popular destinations.
	RelatedEndpoint = "http://apis.data.go.kr/B551011/TarRlteTarService1/areaBasedList1"

	defaultNumRows    = 100
	defaultMaxPages   = 1
	defaultMaxRetries = 3
	defaultTimeout    = 60 * time.Second
)

// Config configures a Client.
type Config struct {
	ServiceKey string

	// Endpoints defaults to LocalHubEndpoint and RelatedEndpoint.
	Endpoints []string

	// NumRows is the page size requested from each endpoint.
	NumRows int

	// MaxPages bounds how many pages are read per endpoint.
	MaxPages int

	// Rate is the maximum number of requests per second. Zero disables pacing.
	Rate float64

	// MaxRetries bounds attempts per page on transient failures.
	MaxRetries int

	// InitialBackoff is the first retry delay. Defaults to 500ms.
	InitialBackoff time.Duration

	HTTPClient *http.Client
}

// Client reads paginated item lists from the open-data API.
type Client struct {
	serviceKey     string
	endpoints      []string
	numRows        int
	maxPages       int
	maxRetries     int
	initialBackoff time.Duration
	limiter        *rate.Limiter
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewClient creates a Client. A missing service key is a configuration error.
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("%w: KTO_SERVICE_KEY가 필요합니다", config.ErrConfiguration)
	}
	if log == nil {
		log = logger.Nop()
	}
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = []string{LocalHubEndpoint, RelatedEndpoint}
	}
	if cfg.NumRows <= 0 {
		cfg.NumRows = defaultNumRows
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	return &Client{
		serviceKey:     cfg.ServiceKey,
		endpoints:      cfg.Endpoints,
		numRows:        cfg.NumRows,
		maxPages:       cfg.MaxPages,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		limiter:        limiter,
		httpClient:     cfg.HTTPClient,
		logger:         log,
	}, nil
}

// Fetch reads every configured endpoint and returns the normalized documents.
// Document IDs are left empty.
func (c *Client) Fetch(ctx context.Context) ([]vector.Document, error) {
	var docs []vector.Document

	for _, endpoint := range c.endpoints {
		items, err := c.FetchEndpoint(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			docs = append(docs, ItemToDocument(item))
		}
	}

	return docs, nil
}

// FetchEndpoint reads up to MaxPages pages from endpoint, stopping early at
// the first short page.
func (c *Client) FetchEndpoint(ctx context.Context, endpoint string) ([]map[string]any, error) {
	var all []map[string]any

	for page := 1; page <= c.maxPages; page++ {
		items, err := c.fetchPage(ctx, endpoint, page)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("fetched kto page",
			"endpoint", endpoint,
			"page", page,
			"items", len(items),
		)

		all = append(all, items...)
		if len(items) < c.numRows {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, page int) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("numOfRows", strconv.Itoa(c.numRows))
	params.Set("pageNo", strconv.Itoa(page))
	params.Set("MobileOS", "ETC")
	params.Set("MobileApp", "Kauni")
	params.Set("_type", "json")
	target := endpoint + "?" + params.Encode()

	exp := backoff.NewExponentialBackOff()
	if c.initialBackoff > 0 {
		exp.InitialInterval = c.initialBackoff
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries-1)), ctx)

	return backoff.RetryWithData(func() ([]map[string]any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.get(ctx, target)
	}, b)
}

func (c *Client) get(ctx context.Context, target string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating kto request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kto request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading kto response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("kto API error (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("kto API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding kto response: %w", err))
	}

	return ExtractItems(data), nil
}

// ExtractItems resolves response.body.items.item. A single object becomes a
// one-item list; any other shape yields an empty list.
func ExtractItems(data any) []map[string]any {
	node := data
	for _, key := range []string{"response", "body", "items", "item"} {
		m, ok := node.(map[string]any)
		if !ok {
			return []map[string]any{}
		}
		node = m[key]
	}

	switch v := node.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, raw := range v {
			if item, ok := raw.(map[string]any); ok {
				items = append(items, item)
			}
		}
		return items
	default:
		return []map[string]any{}
	}
}
