// Package botapi provides a Go client for the bot-management REST API that
// backs the admin screens.
package botapi

import "time"

// DefaultBaseURL is the production bot API.
const DefaultBaseURL = "https://bot-api.portobello.ru"

// Default client settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 0
	DefaultRetryDelay = 500 * time.Millisecond
	DefaultUserAgent  = "botadmin/1.0"
)

// Config holds all configuration for the bot API client.
type Config struct {
	// BaseURL is the scheme and host of the bot API, optionally with a path prefix.
	BaseURL string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for idempotent
	// requests that fail transiently. Zero disables retries.
	MaxRetries int

	// RetryDelay is the initial delay between retries (exponential backoff applied).
	RetryDelay time.Duration

	// UserAgent is sent on every request.
	UserAgent string
}

// DefaultConfig returns a Config with the production URL and default settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		UserAgent:  DefaultUserAgent,
	}
}

// WithBaseURL returns a copy of the config pointing at baseURL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxRetries int, retryDelay time.Duration) Config {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}
