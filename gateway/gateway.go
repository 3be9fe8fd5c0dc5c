// Package gateway is the single egress point for calls to the Apex Global
// Defense REST backend. It owns the credential token, attaches it to every
// request and reports rejected tokens to an injected handler.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/awnumar/memguard"

	"github.com/apexdefense/agd/events"
	"github.com/apexdefense/agd/storage"
)

const (
	// TokenKey is the durable storage key holding the raw bearer token.
	TokenKey = "access_token"
	// DefaultNamespace is the storage namespace used when none is configured.
	DefaultNamespace = "default"

	apiPrefix = "/api/v1"
)

// UnauthorizedFunc is invoked once per request rejected with HTTP 401.
type UnauthorizedFunc func(events.Unauthorized)

// Client issues calls against the backend. It is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	repo           storage.Repository
	namespace      string
	logger         *slog.Logger
	onUnauthorized UnauthorizedFunc

	mu    sync.RWMutex
	token *memguard.Enclave
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNamespace selects the storage namespace the token is mirrored into.
func WithNamespace(ns string) Option {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithUnauthorizedHandler sets the callback run after a 401 has cleared the
// token. The composition root typically wires this to events.Signal.Emit.
func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a Client for the backend at baseURL (scheme and host, the
// /api/v1 prefix is appended). The in-memory token is initialised from repo.
func New(baseURL string, repo storage.Repository, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/") + apiPrefix,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		repo:       repo,
		namespace:  DefaultNamespace,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	stored, err := repo.Get(c.namespace, TokenKey)
	switch {
	case err == nil:
		if len(stored) > 0 {
			c.token = memguard.NewEnclave(stored)
		}
	case storage.IsNotFound(err):
	default:
		return nil, fmt.Errorf("loading stored token: %w", err)
	}
	return c, nil
}

// BaseURL returns the endpoint prefix every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsAuthenticated reports whether a token is held. Validity is not
// checked; an expired token surfaces as a 401 on the next call.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// Token returns a copy of the held token, or "" when none is held.
func (c *Client) Token() (string, error) {
	c.mu.RLock()
	enclave := c.token
	c.mu.RUnlock()
	if enclave == nil {
		return "", nil
	}
	buf, err := enclave.Open()
	if err != nil {
		return "", fmt.Errorf("opening token enclave: %w", err)
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}

// SetToken stores tok in durable storage, then in memory, so the next
// request carries it. When persisting fails the held token is unchanged.
func (c *Client) SetToken(tok string) error {
	if tok == "" {
		return c.ClearToken()
	}
	if err := c.repo.Put(c.namespace, TokenKey, []byte(tok)); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	c.mu.Lock()
	c.token = memguard.NewEnclave([]byte(tok))
	c.mu.Unlock()
	return nil
}

// ClearToken drops the token from memory and durable storage. Clearing an
// absent token is not an error.
func (c *Client) ClearToken() error {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
	if err := c.repo.Delete(c.namespace, TokenKey); err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("removing stored token: %w", err)
	}
	return nil
}

// Logout invalidates the session locally. The backend is not contacted.
func (c *Client) Logout() error {
	return c.ClearToken()
}

// Request sends a JSON request and decodes a JSON response into out (which
// may be nil). params are appended as the query string.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	return c.do(req, path, out, false)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, reader, nil)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, params url.Values) (*http.Request, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	tok, err := c.Token()
	if err != nil {
		return nil, err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// do executes req. authFlow marks login/registration, whose failures are
// authentication errors and never invalidate the session.
func (c *Client) do(req *http.Request, path string, out any, authFlow bool) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway request",
		"method", req.Method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
		if authFlow {
			return fmt.Errorf("%w: %w", ErrAuthentication, apiErr)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(path)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", req.Method, path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(path string) {
	if err := c.ClearToken(); err != nil {
		c.logger.Error("gateway: clearing token after 401 failed", "error", err)
	}
	c.logger.Warn("gateway: token rejected, session invalidated", "path", path)
	if c.onUnauthorized != nil {
		c.onUnauthorized(events.Unauthorized{Redirect: events.LoginPath})
	}
}
