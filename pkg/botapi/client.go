package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 2048

// Client issues authenticated requests against the bot API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a new bot API client with the given configuration.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "botapi-client")
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: &loggingTransport{inner: http.DefaultTransport, logger: logger},
		},
		config: config,
		logger: logger,
	}
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// request describes one bot API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any // JSON-encoded when non-nil
	out    any // decoded from JSON when non-nil; *json.RawMessage receives the raw body

	// raw request body, used instead of body for multipart uploads
	rawBody     []byte
	contentType string

	auth bool
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// do executes r, retrying transient failures of idempotent methods.
func (c *Client) do(ctx context.Context, r request) error {
	var creds Credentials
	if r.auth {
		var ok bool
		creds, ok = AuthFrom(ctx)
		if !ok {
			c.logger.Warn("refusing unauthenticated call", "op", r.op)
			return WrapError(r.op, ErrNotAuthenticated)
		}
	}

	payload := r.rawBody
	contentType := r.contentType
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return WrapError(r.op, fmt.Errorf("marshaling request: %w", err))
		}
		payload = b
		contentType = "application/json"
	}

	retries := 0
	if idempotent(r.method) {
		retries = c.config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.logger.Debug("retrying after delay", "op", r.op, "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return WrapError(r.op, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := c.send(ctx, r, creds, payload, contentType)
		if err != nil {
			lastErr = err
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
				c.logger.Warn("token rejected, invalidating session", "op", r.op)
				creds.invalidate()
				return err
			}
			if !IsRetryable(err) || ctx.Err() != nil {
				return err
			}
			c.logger.Debug("request failed, will retry", "op", r.op, "error", err, "attempt", attempt)
			continue
		}
		return decode(r.op, body, r.out)
	}

	if retries == 0 {
		return lastErr
	}
	return fmt.Errorf("all retries exhausted: %w", lastErr)
}

// send performs a single HTTP round trip and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, r request, creds Credentials, payload []byte, contentType string) ([]byte, error) {
	u, err := c.url(r.path, r.query)
	if err != nil {
		return nil, WrapError(r.op, err)
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, rd)
	if err != nil {
		return nil, WrapError(r.op, fmt.Errorf("creating HTTP request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds.Token != "" {
		req.Header.Set("token", creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(r.op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(r.op, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Op: r.op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func (c *Client) url(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + path
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}
	return base.String(), nil
}

func decode(op string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return WrapError(op, fmt.Errorf("unmarshaling response: %w", err))
	}
	return nil
}
