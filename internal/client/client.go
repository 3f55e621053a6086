package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, error)
}

type authMode int

const (
	authNone     authMode = iota // never send a token
	authOptional                 // send a token when one is stored
	authRequired                 // fail with ErrNotAuthenticated when none is stored
)

// Client represents an HTTP client for the review service API
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(sentToken string)
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHandler registers fn to run with the rejected token when the
// backend answers 401 to a request that carried one. It is not called for
// failed logins or for logout notifications.
func WithUnauthorizedHandler(fn func(sentToken string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client for baseURL. tokens may be nil for clients
// that only call public endpoints.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	auth   authMode
	token  string // explicit token, overrides the TokenSource

	// quiet401 keeps a 401 from reaching the unauthorized handler.
	quiet401 bool

	jsonBody any
	formBody url.Values

	out any
}

func (c *Client) do(ctx context.Context, r request) error {
	token := r.token
	if token == "" && r.auth != authNone && c.tokens != nil {
		t, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to read session token: %w", err)
		}
		token = t
	}
	if token == "" && r.auth == authRequired {
		return ErrNotAuthenticated
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.jsonBody != nil:
		data, err := json.Marshal(r.jsonBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case r.formBody != nil:
		body = strings.NewReader(r.formBody.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	sentToken := token != "" && r.auth != authNone
	if sentToken {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
		if apiErr.IsUnauthorized() && sentToken && !r.quiet401 && c.onUnauthorized != nil {
			c.onUnauthorized(token)
		}
		return apiErr
	}

	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func pageQuery(page int, sizeKey string, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set(sizeKey, fmt.Sprint(size))
	return q
}
