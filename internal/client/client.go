// Package client provides the authenticated HTTP client for the ragchat
// backend. Credentials are ambient: the backend sets httponly cookies on
// login, the jar carries them on every call, and application code only
// ever observes whether a guarded call succeeded.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/danielwetzel/ragchat/internal/metrics"
)

const refreshPath = "/auth/refresh-token"

// transientRetries bounds retries of GET requests that fail at the
// network layer before reaching the backend.
const transientRetries = 2

// authPaths identify the credential lifecycle itself. A 401 from these
// must never trigger a refresh: login failures would loop, and a logout
// with an expired session has no business renewing it first.
var authPaths = []string{"/auth/login", "/auth/register", "/auth/logout", refreshPath}

// Client is the authenticated HTTP client. All service calls go through
// it; none of them attach credentials manually.
type Client struct {
	baseURL *url.URL
	httpc   *http.Client
	jar     *Jar
	logger  *slog.Logger
	stats   *metrics.Collector

	// Concurrent 401s coalesce into one in-flight renewal.
	refresh singleflight.Group
}

// New creates a client for the given backend origin.
func New(baseURL string, jar *Jar, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q has no scheme or host", baseURL)
	}

	return &Client{
		baseURL: u,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		jar:    jar,
		logger: logger,
		stats:  metrics.NewCollector(),
	}, nil
}

// HasCredential reports whether an access-token cookie is present. This
// is a presence check only; validity is the backend's call.
func (c *Client) HasCredential() bool {
	return c.jar.Has(accessTokenCookie)
}

// ClearCredentials drops all ambient cookies, local-only.
func (c *Client) ClearCredentials() {
	c.jar.Clear()
}

// Stats returns request statistics collected since the client was created.
func (c *Client) Stats() metrics.Snapshot {
	return c.stats.Snapshot()
}

// call performs one logical request. On a 401 outside the auth flow it
// renews the credential and re-issues the request exactly once; a second
// 401 is surfaced unchanged.
func (c *Client) call(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	resp, err := c.send(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthPath(path) {
		drain(resp)
		c.logger.Debug("credential rejected, renewing", "method", method, "path", path)
		if err := c.renewCredential(ctx); err != nil {
			return fmt.Errorf("renew credential: %w", err)
		}
		resp, err = c.send(ctx, method, path, contentType, body)
		if err != nil {
			return err
		}
	}

	return decode(resp, out)
}

// renewCredential issues the refresh call. Concurrent callers share a
// single in-flight renewal and all observe its outcome; the renewal
// cookie is only spent once per expiry.
func (c *Client) renewCredential(ctx context.Context) error {
	_, err, shared := c.refresh.Do(refreshPath, func() (any, error) {
		return nil, c.call(ctx, http.MethodPost, refreshPath, "", nil, nil)
	})
	if shared {
		c.logger.Debug("renewal coalesced with in-flight refresh")
	}
	return err
}

// send performs one HTTP round trip. GET requests retry a bounded number
// of times on network-level failures; writes are never replayed blindly.
func (c *Client) send(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, error) {
	u := c.baseURL.JoinPath(path).String()

	if method == http.MethodGet {
		op := func() (*http.Response, error) {
			return c.roundTrip(ctx, method, u, path, contentType, body)
		}
		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), transientRetries), ctx)
		return backoff.RetryWithData(op, bo)
	}

	return c.roundTrip(ctx, method, u, path, contentType, body)
}

func (c *Client) roundTrip(ctx context.Context, method, u, path, contentType string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpc.Do(req)
	c.stats.Record(method+" "+normalizePath(path), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// get issues a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, "", nil, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.call(ctx, http.MethodPost, path, "application/json", body, out)
}

func isAuthPath(path string) bool {
	for _, p := range authPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// decode consumes the response body, converting non-2xx statuses into
// *Error and unmarshalling success payloads into out.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorDetail extracts the backend's {"detail": "..."} message, if any.
func errorDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// normalizePath collapses numeric path segments so per-conversation
// endpoints aggregate under one metrics key.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && isDigits(p) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
