package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/pydigger/pkg/cache"
	"github.com/matzehuels/pydigger/pkg/observability"
)

// Client provides shared HTTP functionality for package index clients.
// It handles response caching and common request headers. Failed requests
// are not retried: a failure abandons the item and the next run picks it up.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string

	cacheHooks observability.CacheHooks
	httpHooks  observability.HTTPHooks
}

// NewClient creates a Client backed by c. Cached values expire after ttl
// (0 means never). Headers are applied to all requests; nil is allowed.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		ttl:     ttl,
		headers: headers,

		cacheHooks: observability.NoopCacheHooks{},
		httpHooks:  observability.NoopHTTPHooks{},
	}
}

// SetHooks installs cache and HTTP hooks. Nil arguments keep the current hooks.
func (c *Client) SetHooks(ch observability.CacheHooks, hh observability.HTTPHooks) {
	if ch != nil {
		c.cacheHooks = ch
	}
	if hh != nil {
		c.httpHooks = hh
	}
}

// SetHTTPClient replaces the underlying HTTP client (tests, custom transports).
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Cached retrieves v from the cache, or calls fetch and caches the result.
// If refresh is true, the cache is bypassed but still updated.
// The fetch function should populate v. Cache failures are not fatal.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	kt := keyType(key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				c.cacheHooks.OnCacheHit(ctx, kt)
				return nil
			}
		}
		c.cacheHooks.OnCacheMiss(ctx, kt)
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			c.cacheHooks.OnCacheSet(ctx, kt, len(data))
		}
	}
	return nil
}

// keyType is the namespace of a key: "pypi" for "pypi:meta:...".
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "default"
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrDecode, url, err)
	}
	return nil
}

// Open performs an HTTP GET and returns the response body for streaming
// parsers such as the update feed. The caller must close it.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return c.doRequest(ctx, url, nil)
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.httpHooks.OnError(ctx, req.Method, req.URL.Host, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	c.httpHooks.OnResponse(ctx, req.Method, req.URL.Host, resp.StatusCode, time.Since(start))
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
