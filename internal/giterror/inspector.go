package giterror

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsTransient returns true if a request that failed with err may succeed
	// when repeated unchanged.
	IsTransient(err error) bool
}

// StatusCoder is implemented by errors that carry the HTTP status code of a
// completed exchange.
type StatusCoder interface {
	StatusCode() int
}

// TransportFailure is implemented by errors that happened below the HTTP
// layer, such as a truncated or undecodable response body.
type TransportFailure interface {
	TransportFailure() bool
}

// GitHubErrorInspector implements the Inspector interface for GitHub API errors.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusCode(err); ok {
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusCode(err); ok && code == http.StatusNotFound {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to a repository")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusCode(err); ok && code == http.StatusTooManyRequests {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// IsTransient reports whether err belongs to the retryable class: transport
// failures (timeouts, refused or reset connections, broken bodies) and the
// gateway statuses 502 and 504. Every other HTTP status is final, as is a
// canceled context.
func (i *GitHubErrorInspector) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if code, ok := statusCode(err); ok {
		return IsRetryableStatus(code)
	}
	var tf TransportFailure
	if errors.As(err, &tf) && tf.TransportFailure() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return i.IsNetworkError(err)
}

// IsRetryableStatus reports whether an HTTP status belongs to the retryable
// gateway set.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func statusCode(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
