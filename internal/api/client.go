// Package api implements the low-level HTTP client used to talk to a
// storefront backend. It supports dual-mode authentication: a cookie jar
// for session cookies and an optional bearer token attached to every
// request when a token source yields a non-empty value.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
	clientUserAgent     = "storefront-client-go/1.0.0"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// TokenSource supplies the current bearer token. An empty return value
// means no Authorization header is attached and the request relies on
// the cookie jar alone.
type TokenSource func() string

// Client is a thin HTTP client bound to one backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. The caller is
// responsible for attaching a cookie jar when cookie sessions are needed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithTokenSource installs the bearer token source.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.token = src }
}

// NewClient creates a client for the given base URL. The default
// underlying client carries an in-memory cookie jar so that cookie-based
// sessions work out of the box.
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil) // error is always nil for nil options
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Response is the raw outcome of a request. Body is fully read so that
// callers can apply their own defensive parsing.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs a request and returns the raw response. A non-nil error is
// returned only for transport-level failures (bad URL, network error,
// unreadable body); HTTP error statuses are reported through the
// Response so callers decide how to interpret them.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if strings.Contains(path, "?") {
		reqURL = c.baseURL + path
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(headerUserAgent, clientUserAgent)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set(headerAuthorization, "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// GetJSON performs a GET and decodes a JSON body into result. HTTP error
// statuses are converted into a typed *Error.
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return parseError(resp.StatusCode, resp.Body)
	}
	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// PostJSON performs a POST with a JSON body and decodes a JSON response
// into result when given.
func (c *Client) PostJSON(ctx context.Context, path string, body, result any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return parseError(resp.StatusCode, resp.Body)
	}
	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
