package botapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated indicates the call was attempted without a token.
	// It is returned before any network I/O happens.
	ErrNotAuthenticated = errors.New("not authenticated: no token")

	// ErrEmptyToken indicates the auth endpoint answered without a token.
	ErrEmptyToken = errors.New("auth response contained no token")
)

// StatusError represents a non-2xx response from the bot API.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// IsRetryable returns true if the status is likely transient.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Error wraps a transport or decoding failure with operation context.
type Error struct {
	// Op is the operation that failed, e.g. "group.list".
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation context.
func WrapError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// IsUnauthorized reports whether err means the token was rejected or missing.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is a 404 from the bot API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsRetryable returns true if the error is likely transient and the request
// should be retried.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	var e *Error
	return errors.As(err, &e)
}
