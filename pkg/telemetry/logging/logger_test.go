package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rreusch2/fluxstreams/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{"defaults", config.LoggingConfig{}, false},
		{"text debug", config.LoggingConfig{Level: "debug", Format: "text"}, false},
		{"bad level", config.LoggingConfig{Level: "loud"}, true},
		{"bad format", config.LoggingConfig{Format: "xml"}, true},
		{"bad pattern", config.LoggingConfig{RedactPII: true, RedactPatterns: []config.RedactPattern{{Name: "x", Pattern: "("}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closer, err := New(tt.cfg, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				defer closer.Close()
				if logger == nil {
					t.Fatal("expected logger")
				}
			}
		})
	}
}

func TestNew_JSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "route", "/api/chatbot")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["route"] != "/api/chatbot" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fluxstreams.log")
	var buf bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{
		File: config.LogFileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("to both sinks")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "to both sinks") {
		t.Errorf("file content = %q", data)
	}
	if !strings.Contains(buf.String(), "to both sinks") {
		t.Errorf("stdout content = %q", buf.String())
	}
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LoggingConfig{
		Format:    "json",
		RedactPII: true,
		RedactPatterns: []config.RedactPattern{
			{Name: "order", Pattern: `ORD-\d+`, Replacement: "ORD-***"},
		},
	}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	logger.With("api_key", "sk-abcdefghijklmnop").Info("lead captured for jane@example.com",
		"email", "jane@example.com",
		"message", "call me at 555-123-4567 about ORD-991",
		"error", errors.New("auth failed with Bearer abc.def"),
		slog.Group("lead", slog.String("phone", "555-123-4567")),
		"count", 3,
	)

	out := buf.String()
	for _, leaked := range []string{"jane@example.com", "555-123-4567", "sk-abcdefghijklmnop", "ORD-991", "abc.def"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaked %q: %s", leaked, out)
		}
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["email"] != "***" {
		t.Errorf("email = %v, want fully masked", entry["email"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("non-string attrs should pass through, got %v", entry["count"])
	}
	if !strings.Contains(entry["message"].(string), "ORD-***") {
		t.Errorf("custom pattern not applied: %v", entry["message"])
	}
}

func TestRedactor_RedactString(t *testing.T) {
	r, err := NewRedactor(nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"nothing here", "nothing here"},
		{"mail bob@site.io now", "mail ***@*** now"},
		{"Authorization: Bearer tok123", "Authorization: Bearer ***"},
		{"key sk-1234567890abcdef", "key ***"},
		{"phone (555) 123-4567", "phone ***-***-****"},
	}
	for _, tt := range tests {
		if got := r.RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var nilRedactor *Redactor
	if nilRedactor.RedactString("a@b.co") != "a@b.co" {
		t.Error("nil redactor should pass values through")
	}
}

func TestRedactAPIKey(t *testing.T) {
	if got := RedactAPIKey("sk-abcdef"); got != "sk-a***" {
		t.Errorf("RedactAPIKey = %q", got)
	}
	if got := RedactAPIKey("abc"); got != "***" {
		t.Errorf("RedactAPIKey(short) = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithClientIP(ctx, "10.0.0.1")
	FromContext(ctx, base).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("request id missing: %s", buf.String())
	}
	if GetClientIP(ctx) != "10.0.0.1" {
		t.Errorf("client ip = %q", GetClientIP(ctx))
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Error("expected default logger")
	}
}
