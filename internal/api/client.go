package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrNoToken is returned when an authenticated call is attempted without a
// stored access token.
var ErrNoToken = errors.New("authorization required but no token is set")

// Client issues authenticated JSON calls against the worklog API. A zero
// token is valid for the unauthenticated auth endpoints; everything else
// requires SetToken first.
type Client struct {
	base      *url.URL
	http      *http.Client
	token     string
	userAgent string
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("api base URL is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	client := &Client{
		base: base,
		// No global timeout - the SSE stream stays open until the server
		// closes it. Individual calls pass contexts with deadlines.
		http:      &http.Client{},
		userAgent: UserAgent(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.http == nil {
		client.http = &http.Client{}
	}
	return client, nil
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// HasToken reports whether a bearer token is installed.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) *url.URL {
	ref := &url.URL{Path: "/" + strings.TrimLeft(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref)
}

func (c *Client) newRequest(ctx context.Context, method string, endpoint *url.URL, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authed {
		if c.token == "" {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getJSON issues an authenticated-or-not GET and decodes the JSON response
// into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, authed bool, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(path, query), nil, authed)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON issues a POST with a JSON body and decodes the JSON response into
// out. A nil body sends an empty JSON object.
func (c *Client) postJSON(ctx context.Context, path string, query url.Values, body any, authed bool, out any) error {
	if body == nil {
		body = struct{}{}
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrDecode, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(path, query), bytes.NewReader(encoded), authed)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return classifyStatus(resp.StatusCode, string(body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// OpenStream opens the long-lived push channel at locator and returns its
// body for frame-level consumption. The locator may be a full URL (the
// server hands one out) or a path relative to the API base; either way the
// request is issued against the configured base so credentials apply. A 404
// means the channel is already gone, reported as ErrNotFound so callers can
// skip their open-timeout wait.
func (c *Client) OpenStream(ctx context.Context, locator string) (io.ReadCloser, error) {
	endpoint, err := c.resolveLocator(locator)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, true)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, classifyStatus(resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

func (c *Client) resolveLocator(locator string) (*url.URL, error) {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" {
		return nil, errors.New("stream locator is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse stream locator: %w", err)
	}
	// Keep only path and query; the host always comes from the API base.
	ref := &url.URL{Path: parsed.Path, RawQuery: parsed.RawQuery}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return c.base.ResolveReference(ref), nil
}
