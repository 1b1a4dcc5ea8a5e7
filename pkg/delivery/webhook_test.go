package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func samplePayload() map[string]string {
	return map[string]string{
		"FirstName":   "Jane",
		"LastName":    "Doe",
		"Email":       "jane@example.com",
		"Phone":       "N/A",
		"InquiryType": "AI Chat Lead",
		"Message":     "Need an audit",
	}
}

func TestWebhook_Deliver(t *testing.T) {
	var got map[string]string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := NewWebhook(Config{URL: server.URL, Timeout: time.Second}, WithLogger(quietLogger()))
	if err := hook.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if len(got) != 6 || got["Email"] != "jane@example.com" || got["InquiryType"] != "AI Chat Lead" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestWebhook_Deliver_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"not found", http.StatusNotFound},
		{"not modified", http.StatusNotModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			}))
			defer server.Close()

			hook := NewWebhook(Config{URL: server.URL}, WithLogger(quietLogger()))
			err := hook.Deliver(context.Background(), samplePayload())

			var delErr *Error
			if !errors.As(err, &delErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if delErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", delErr.StatusCode, tt.status)
			}
			if calls.Load() != 1 {
				t.Errorf("webhook called %d times, want 1", calls.Load())
			}
		})
	}
}

func TestWebhook_Deliver_NotConfigured(t *testing.T) {
	hook := NewWebhook(Config{URL: "  "}, WithLogger(quietLogger()))
	if hook.Configured() {
		t.Error("blank URL should not count as configured")
	}
	if err := hook.Deliver(context.Background(), samplePayload()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestWebhook_Deliver_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	hook := NewWebhook(Config{URL: server.URL, Timeout: 50 * time.Millisecond}, WithLogger(quietLogger()))
	err := hook.Deliver(context.Background(), samplePayload())

	var delErr *Error
	if !errors.As(err, &delErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if delErr.StatusCode != 0 || delErr.Cause == nil {
		t.Errorf("expected transport failure, got %+v", delErr)
	}
}
