package client

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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/habedi/escola/auth"
	"github.com/rs/zerolog/log"
)

// Backend endpoints owned by the session lifecycle.
const (
	TokenPath   = "usuarios/token/"
	RefreshPath = "usuarios/token/refresh/"
	MePath      = "usuarios/me/"
)

// DefaultTimeout bounds a single HTTP exchange when no custom http.Client is given.
const DefaultTimeout = 30 * time.Second

const requestIDHeader = "X-Request-ID"

// Client is the session-aware API client. Every call goes through the same interceptor chain:
// attach the persisted bearer token, send, and on a 401 refresh once and retry.
// A Client is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    *auth.Manager

	active atomic.Pointer[string] // Authorization value sent with the latest request
	status atomic.Int32
	user   atomic.Pointer[User]
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-exchange timeout of the default transport client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New configures a client for a single backend origin, e.g. "http://host:8000/api/v1".
func New(baseURL string, store auth.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing host", baseURL)
	}
	if store == nil {
		return nil, fmt.Errorf("a session store is required")
	}
	u.RawQuery, u.Fragment = "", ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "escola-client",
		tokens:    auth.NewManager(store),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.status.Store(int32(StatusLoading))
	return c, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Tokens exposes the session manager backing the client.
func (c *Client) Tokens() *auth.Manager { return c.tokens }

// AccessToken returns the token currently attached to requests, or "".
func (c *Client) AccessToken() string {
	if p := c.active.Load(); p != nil {
		return *p
	}
	return ""
}

func (c *Client) setActive(token string) {
	c.active.Store(&token)
}

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON body into v. Empty bodies leave v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		log.Error().Err(err).Str("body_preview", bodyPreview(r.Body)).Msg("Failed to parse response body")
		return &Error{Kind: ServerError, StatusCode: r.StatusCode, Detail: "unexpected response body", Body: r.Body, Err: err}
	}
	return nil
}

// call describes one logical request. It is passed by value; a retry is a new value with
// retries incremented, so the single-retry rule can be checked on the value alone.
type call struct {
	method    string
	path      string
	header    http.Header
	body      []byte
	requestID string
	retries   int
}

func (cl call) retried() call {
	cl.retries++
	return cl
}

// Do performs an authenticated request. body may be nil, a []byte (sent verbatim), or any
// value to be JSON-encoded. Caller-supplied Authorization headers are always overridden.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	cl, err := newCall(method, path, body, header)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, cl)
}

func newCall(method, path string, body any, header http.Header) (call, error) {
	var raw []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		raw = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return call{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		raw = encoded
	}
	return call{
		method:    method,
		path:      path,
		header:    header.Clone(),
		body:      raw,
		requestID: uuid.NewString(),
	}, nil
}

// execute runs the response interceptor around send.
func (c *Client) execute(ctx context.Context, cl call) (*Response, error) {
	resp, err := c.send(ctx, cl, true)
	if err == nil {
		return resp, nil
	}
	if err := c.recoverUnauthorized(ctx, cl, err); err != nil {
		return nil, err
	}
	return c.execute(ctx, cl.retried())
}

// recoverUnauthorized decides what follows a failed attempt of cl. It returns nil when the
// session was refreshed and cl may be retried, or the error to surface otherwise.
func (c *Client) recoverUnauthorized(ctx context.Context, cl call, err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || cl.retries > 0 {
		return err
	}

	refreshToken, rerr := c.tokens.RefreshToken(ctx)
	if rerr != nil {
		log.Error().Err(rerr).Msg("Failed to read refresh token")
		return err
	}
	if refreshToken == "" {
		log.Debug().Str("path", cl.path).Msg("Got 401 without a refresh token")
		return err
	}

	log.Info().Str("path", cl.path).Str("request_id", cl.requestID).Msg("Access token rejected, refreshing...")
	if rerr := c.refresh(ctx, refreshToken); rerr != nil {
		if ctx.Err() != nil {
			// An abandoned refresh says nothing about the session.
			return rerr
		}
		c.dropSession(ctx)
		var refreshErr *Error
		status := 0
		if errors.As(rerr, &refreshErr) {
			status = refreshErr.StatusCode
		}
		return &Error{
			Kind:       SessionExpired,
			StatusCode: status,
			Detail:     "session expired, please log in again",
			Err:        rerr,
		}
	}
	return nil
}

// send runs the request interceptor and performs one HTTP exchange. Non-2xx responses are
// returned as *Error.
func (c *Client) send(ctx context.Context, cl call, authenticated bool) (*Response, error) {
	target, err := c.resolve(cl.path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if cl.body != nil {
		reader = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, reader)
	if err != nil {
		log.Error().Err(err).Str("method", cl.method).Str("url", target).Msg("Failed to create HTTP request object")
		return nil, err
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if cl.body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, cl.requestID)

	req.Header.Del("Authorization")
	if authenticated {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read access token: %w", err)
		}
		c.setActive(token)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log.Debug().Str("method", cl.method).Str("url", target).Int("retry", cl.retries).
		Str("request_id", cl.requestID).Msg("Sending HTTP request")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request %s %s aborted: %w", cl.method, cl.path, ctxErr)
		}
		log.Error().Err(err).Str("method", cl.method).Str("url", target).Msg("HTTP request failed")
		return nil, &Error{Kind: NetworkUnavailable, Err: err}
	}
	defer closeResponseBody(resp)

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, &Error{Kind: NetworkUnavailable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debug().Str("method", cl.method).Str("url", target).Int("status", resp.StatusCode).
			Msg("HTTP request returned non-OK status")
		return nil, newHTTPError(resp.StatusCode, body)
	}
	log.Debug().Str("method", cl.method).Str("url", target).Int("status", resp.StatusCode).Msg("HTTP request successful")
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body, RequestID: cl.requestID}, nil
}

// resolve joins a relative API path onto the base URL. Absolute URLs are accepted only for the
// configured origin so the bearer token never leaves it.
func (c *Client) resolve(p string) (string, error) {
	ref, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", p, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		if !c.sameOrigin(ref) {
			return "", fmt.Errorf("refusing to send credentials to foreign origin %s", ref.Host)
		}
		return ref.String(), nil
	}
	ref.Path = strings.TrimPrefix(ref.Path, "/")
	return c.baseURL.ResolveReference(ref).String(), nil
}

func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.baseURL.Scheme) && strings.EqualFold(u.Host, c.baseURL.Host)
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	_ = resp.Body.Close()
}
