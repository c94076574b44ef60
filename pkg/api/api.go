// Package api provides a typed HTTP client for the task-management API.
//
// A single transport function attaches the JSON content type and, when a
// credential is available, a bearer Authorization header to every request,
// then normalizes the outcome into a Result: either a decoded payload or a
// user-facing error message, never both. Resource methods (auth, todos,
// groups, admin) are thin typed wrappers over that transport, one per server
// operation, each a single round trip with no retry or caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// GenericServerError is surfaced when the server reports a failure
	// without a usable error message in the body.
	GenericServerError = "An error occurred"
	// NetworkError is surfaced for transport-level failures and malformed
	// responses. No detail is leaked past this boundary.
	NetworkError = "Network error occurred"
)

// CredentialSource supplies the bearer credential attached to outgoing
// requests. Load reports whether a credential is currently present; it is
// consulted on every request so a login or logout takes effect immediately.
type CredentialSource interface {
	Load() (string, bool)
}

// Result is the uniform success/error shape of every API call: a payload XOR
// an error message. Use Ok to test which side is populated.
type Result[T any] struct {
	ok  bool
	val T
	msg string
}

// Ok wraps a successful payload.
func Ok[T any](v T) Result[T] {
	return Result[T]{ok: true, val: v}
}

// Fail wraps a user-facing error message.
func Fail[T any](msg string) Result[T] {
	return Result[T]{msg: msg}
}

// Ok reports whether the call succeeded.
func (r Result[T]) Ok() bool { return r.ok }

// Value returns the payload; it is the zero value when the call failed.
func (r Result[T]) Value() T { return r.val }

// Err returns the error message; it is empty when the call succeeded.
func (r Result[T]) Err() string { return r.msg }

// Client issues requests against one API base URL.
// Client instances are safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialSource
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the API rooted at baseURL (including any
// path prefix, without a trailing slash). creds may be nil for a client that
// only performs unauthenticated calls.
func NewClient(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		creds: creds,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the error envelope the server uses for non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one request and decodes a successful response into out.
// All failure modes collapse into a non-empty message: server-reported errors
// verbatim (or GenericServerError when the body has none), everything
// transport-shaped into NetworkError. It never returns a Go error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (msg string) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		ev := c.log.Debug()
		if msg != "" {
			ev = c.log.Warn().Str("error", msg)
		}
		ev.Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msg("api request")
	}()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return NetworkError
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return NetworkError
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.creds != nil {
		if token, ok := c.creds.Load(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NetworkError
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NetworkError
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err == nil && eb.Error != "" {
			return eb.Error
		}
		return GenericServerError
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return NetworkError
		}
	}
	return ""
}

// call is the typed entry point resource methods build on: one round trip,
// decoded into the envelope type T.
func call[T any](c *Client, ctx context.Context, method, path string, body any) Result[T] {
	var out T
	if msg := c.do(ctx, method, path, body, &out); msg != "" {
		return Fail[T](msg)
	}
	return Ok(out)
}
