// Package afad talks to the AFAD earthquake event API.
package afad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
)

const (
	// DefaultBaseURL is the public API host. GatewayBaseURL is the alternate
	// gateway some networks have to use instead.
	DefaultBaseURL = "https://deprem.afad.gov.tr"
	GatewayBaseURL = "https://servisnet.afad.gov.tr/apigateway/deprem"

	apiRoot        = "/apiv2"
	endpointFilter = "/event/filter"
	endpointLatest = "/event/latest"

	// DefaultTimeout bounds one API exchange.
	DefaultTimeout = 15 * time.Second

	// DefaultLatestLimit caps a latest-events request when the caller does
	// not pick a limit.
	DefaultLatestLimit = 500

	// DefaultFallbackWindow is how far FetchLatest reaches back when it has
	// to fall back to the filter endpoint.
	DefaultFallbackWindow = 24 * time.Hour

	userAgent = "quake-data-etl/0.1"

	// snippetLimit caps how much of an error body lands in messages.
	snippetLimit = 300
)

// UpstreamError reports a failed API exchange: a transport error, a non-2xx
// status, or an unusable body.
type UpstreamError struct {
	StatusCode int    // zero when no response arrived
	Snippet    string // leading bytes of the response body
	Err        error  // transport or decode cause, when any
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("afad: HTTP %d: %s", e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("afad: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client is an AFAD event API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an API client. An empty baseURL means the public host; a
// non-positive timeout means DefaultTimeout. Metrics may be nil for one-shot
// tools.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchByFilter queries the filter endpoint for one time window. Records come
// back in API order as loosely typed maps, ready for normalization.
func (c *Client) FetchByFilter(ctx context.Context, q FilterQuery) ([]map[string]any, error) {
	params, err := q.params()
	if err != nil {
		return nil, fmt.Errorf("fetch by filter: %w", err)
	}

	records, err := c.getJSON(ctx, endpointFilter, params)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched events",
		"count", len(records),
		"start", params.Get("start"),
		"end", params.Get("end"),
		"orderby", params.Get("orderby"))
	return records, nil
}

// LatestOptions tunes FetchLatest. The zero value means the default limit
// with a 24 hour filter fallback.
type LatestOptions struct {
	Limit           int
	FallbackWindow  time.Duration
	DisableFallback bool
}

// FetchLatest queries the latest-events endpoint. When that endpoint fails
// and the fallback is enabled, the same limit is retried through the filter
// endpoint over the trailing window, newest first.
func (c *Client) FetchLatest(ctx context.Context, opts LatestOptions) ([]map[string]any, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLatestLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	records, err := c.getJSON(ctx, endpointLatest, params)
	if err == nil {
		c.logger.Info("fetched latest events", "count", len(records), "limit", limit)
		return records, nil
	}
	if opts.DisableFallback {
		return nil, err
	}

	c.logger.Warn("latest endpoint failed, falling back to filter", "error", err)

	window := opts.FallbackWindow
	if window <= 0 {
		window = DefaultFallbackWindow
	}
	now := domain.Now().In(domain.Istanbul)
	return c.FetchByFilter(ctx, FilterQuery{
		Start:   now.Add(-window),
		End:     now,
		OrderBy: OrderTimeDesc,
		Limit:   limit,
	})
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	fullURL := c.baseURL + apiRoot + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Snippet: snippet(body)}
	}
	if resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return []map[string]any{}, nil
	}

	return decodeRecords(body)
}

// decodeRecords accepts both response shapes the API produces: a bare array
// of records, or an object wrapping the array under "data".
func decodeRecords(body []byte) ([]map[string]any, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("decode response: %w", err), Snippet: snippet(body)}
	}

	switch p := payload.(type) {
	case []any:
		return recordList(p, body)
	case map[string]any:
		if data, ok := p["data"].([]any); ok {
			return recordList(data, body)
		}
	}
	return nil, &UpstreamError{Err: errors.New("unexpected response shape"), Snippet: snippet(body)}
}

func recordList(items []any, body []byte) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, &UpstreamError{Err: errors.New("non-object record in response"), Snippet: snippet(body)}
		}
		records = append(records, record)
	}
	return records, nil
}

func snippet(body []byte) string {
	if len(body) > snippetLimit {
		body = body[:snippetLimit]
	}
	return strings.TrimSpace(string(body))
}
