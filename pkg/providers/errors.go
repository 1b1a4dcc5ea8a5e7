package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ProviderError represents a general provider error.
// It includes the provider name, HTTP status code, and underlying error.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403).
type AuthError struct {
	Provider string
	Message  string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Message    string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TimeoutError represents a request that exceeded its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// EmptyResponseError is returned when the provider answers without any
// choice or with blank content.
type EmptyResponseError struct {
	Provider     string
	FinishReason string
}

// Error implements the error interface.
func (e *EmptyResponseError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("provider %q returned no content (finish reason %q)", e.Provider, e.FinishReason)
	}
	return fmt.Sprintf("provider %q returned no content", e.Provider)
}

// ConfigError represents a provider configuration error.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// ClassifyStatus maps an upstream HTTP status onto the typed errors above.
// header may be nil.
func ClassifyStatus(provider string, status int, header http.Header, message string, cause error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: provider, Message: message}
	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if header != nil {
			retryAfter = ParseRetryAfter(header.Get("Retry-After"))
		}
		return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Message: message}
	default:
		return &ProviderError{Provider: provider, StatusCode: status, Message: message, Cause: cause}
	}
}

// ClassifyTransportError converts deadline expiry and network timeouts into
// a TimeoutError. Other errors are wrapped in a ProviderError.
func ClassifyTransportError(provider string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, Timeout: timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Provider: provider, Timeout: timeout}
	}
	return &ProviderError{Provider: provider, Message: err.Error(), Cause: err}
}

// ParseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
