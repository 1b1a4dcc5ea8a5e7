// Package delivery forwards captured leads to an automation webhook.
//
// The webhook receives a flat JSON object with the keys FirstName, LastName,
// Email, Phone, InquiryType and Message. Any 2xx status counts as accepted.
// Deliveries are attempted exactly once; callers log failures and move on.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rreusch2/fluxstreams/pkg/telemetry/tracing"
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("lead webhook URL is not configured")

// maxErrorBody bounds how much of a rejected response is kept for logs.
const maxErrorBody = 512

// Error describes a delivery the webhook did not accept.
type Error struct {
	// StatusCode is the HTTP status (0 for transport failures)
	StatusCode int

	// Body is the start of the response body, for diagnostics
	Body string

	// Cause is the transport error, if any
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("lead delivery rejected (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("lead delivery failed: %v", e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Config holds the webhook settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Webhook posts lead payloads to a single URL.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// Option customises a Webhook.
type Option func(*Webhook)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Webhook) { w.client = c }
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(w *Webhook) { w.logger = l }
}

// NewWebhook creates a webhook client. An empty URL is allowed; every
// delivery then fails with ErrNotConfigured.
func NewWebhook(cfg Config, opts ...Option) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	w := &Webhook{
		url:    strings.TrimSpace(cfg.URL),
		client: &http.Client{Timeout: timeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Configured reports whether a URL is set.
func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Deliver sends one payload.
func (w *Webhook) Deliver(ctx context.Context, payload map[string]string) error {
	if !w.Configured() {
		w.logger.Error("lead webhook URL not configured, lead not sent")
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode lead payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return &Error{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	w.logger.Debug("lead delivered",
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return nil
}
