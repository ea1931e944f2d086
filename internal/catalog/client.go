package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher is the catalog surface the navigation engine consumes. It is
// implemented by *Client and faked in tests.
type Fetcher interface {
	FetchLatest(ctx context.Context) (Item, error)
	FetchByIndex(ctx context.Context, n int) (Item, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to a catalog that publishes metadata at /info.0.json and
// /{n}/info.0.json.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL   = "https://xkcd.com"
	defaultUserAgent = "panels/0.1"
	defaultTimeout   = 10 * time.Second
	infoDocument     = "info.0.json"
)

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the catalog rooted at baseURL. An empty
// baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized catalog root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchLatest retrieves the newest item. Its Index is the catalog's current
// upper bound.
func (c *Client) FetchLatest(ctx context.Context) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	var item Item
	if err := c.get(ctx, "/"+infoDocument, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// FetchByIndex retrieves item n. Indices below 1 are rejected without a request.
func (c *Client) FetchByIndex(ctx context.Context, n int) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	if n < 1 {
		return Item{}, fmt.Errorf("index %d: %w", n, ErrNotFound)
	}
	var item Item
	if err := c.get(ctx, "/"+strconv.Itoa(n)+"/"+infoDocument, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: strings.TrimSuffix(c.baseURL.Path, "/") + path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "execute request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode >= 400:
		return &HTTPError{Status: resp.StatusCode, Path: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
