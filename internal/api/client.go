// Package api is the HTTP client for the portfolio's remote data store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// CredentialHeader carries the admin password on every mutating request.
const CredentialHeader = "x-admin-password"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "folio/1.0"

// Error represents a request that never produced an HTTP response.
type Error struct {
	Op    string
	URL   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: HTTP status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: HTTP status %d", e.Method, e.Path, e.StatusCode)
}

// IsUnauthorized reports whether err is a credential rejection by the server.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// Client talks to the remote data store. It holds no credential of its own:
// callers pass the credential per request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outgoing requests. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient returns a client for the store rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the store root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ErrInvalidID is returned for a record identifier that cannot be sent as a
// single path segment.
var ErrInvalidID = errors.New("invalid record id")

// endpoint joins segments under the base URL. Each segment must stay one
// path element, so separators and dot segments are refused.
func (c *Client) endpoint(segments ...string) (string, error) {
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `/\`) {
			return "", fmt.Errorf("%w: %q", ErrInvalidID, seg)
		}
	}
	return c.baseURL.JoinPath(segments...).String(), nil
}

type request struct {
	method      string
	segments    []string
	credential  string
	body        io.Reader
	contentType string
}

// do sends req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	target, err := c.endpoint(req.segments...)
	if err != nil {
		return err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Op: req.method, URL: target, Cause: err}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return &Error{Op: req.method, URL: target, Cause: err}
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.credential != "" {
		httpReq.Header.Set(CredentialHeader, req.credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("api: %s %s failed (request %s): %v", req.method, httpReq.URL.Path, requestID, err)
		return &Error{Op: req.method, URL: target, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	log.Printf("api: %s %s -> %d in %s (request %s)", req.method, httpReq.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     req.method,
			Path:       httpReq.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Op: req.method, URL: target, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}
