package apierror

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatus() int
}

// Inspector provides methods for analyzing Launchpad API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the service asked us to slow down.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// LaunchpadInspector checks status codes carried in the error chain first
// and falls back to matching well-known message fragments.
type LaunchpadInspector struct{}

// NewInspector creates a new LaunchpadInspector.
func NewInspector() Inspector {
	return &LaunchpadInspector{}
}

func statusOf(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus(), true
	}
	return 0, false
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *LaunchpadInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusOf(err); ok {
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "invalid oauth") ||
		strings.Contains(errStr, "expired token")
}

// IsNotFoundError checks if the error is a not found error.
func (i *LaunchpadInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusOf(err); ok {
		return code == http.StatusNotFound || code == http.StatusGone
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found")
}

// IsRateLimitError checks if the error is a throttling response.
func (i *LaunchpadInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusOf(err); ok {
		return code == http.StatusTooManyRequests
	}
	return strings.Contains(strings.ToLower(err.Error()), "too many requests")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *LaunchpadInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := statusOf(err); ok {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}
