package botapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID to the bot API.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context whose outbound calls carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestID generates a short request identifier.
func NewRequestID() string {
	return "req_" + uuid.New().String()[:8]
}

// loggingTransport stamps the request ID on every outbound call and logs
// method, path, status and duration at debug level.
type loggingTransport struct {
	inner  http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := RequestIDFrom(req.Context())
	if requestID == "" {
		requestID = NewRequestID()
	}
	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := t.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.Debug("bot api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", duration,
			"request_id", requestID,
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("bot api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", duration,
		"request_id", requestID,
	)
	return resp, nil
}
