package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rreusch2/fluxstreams/pkg/api"
	"github.com/rreusch2/fluxstreams/pkg/conversation"
	"github.com/rreusch2/fluxstreams/pkg/providers"
)

const apology = "Sorry, I'm having trouble connecting to my brain right now."

type stubTurns struct {
	result *conversation.TurnResult
	err    error

	calls      int
	gotMessage string
	gotHistory []conversation.Message
}

func (s *stubTurns) Handle(ctx context.Context, msg string, history []conversation.Message) (*conversation.TurnResult, error) {
	s.calls++
	s.gotMessage = msg
	s.gotHistory = history
	return s.result, s.err
}

func newChat(turns TurnHandler) *ChatHandler {
	return NewChatHandler(turns, apology, 1<<20, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestChatHandler_Success(t *testing.T) {
	turns := &stubTurns{result: &conversation.TurnResult{Reply: "We build AI automations."}}
	body := `{"message": "What do you do?", "conversation_history": [{"role": "assistant", "content": "Hi!"}]}`

	rec := httptest.NewRecorder()
	newChat(turns).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeBody(t, rec)["response"]; got != "We build AI automations." {
		t.Errorf("response = %q", got)
	}
	if turns.gotMessage != "What do you do?" {
		t.Errorf("message = %q", turns.gotMessage)
	}
	if len(turns.gotHistory) != 1 || turns.gotHistory[0].Role != conversation.RoleAssistant {
		t.Errorf("history = %+v", turns.gotHistory)
	}
}

func TestChatHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `hello`, api.MsgMessageRequired},
		{"empty object", `{}`, api.MsgMessageRequired},
		{"message not string", `{"message": 42}`, api.MsgMessageRequired},
		{"message null", `{"message": null}`, api.MsgMessageRequired},
		{"blank message", `{"message": "   "}`, api.MsgMessageRequired},
		{"history not list", `{"message": "hi", "conversation_history": "nope"}`, api.MsgInvalidHistory},
		{"history item missing content", `{"message": "hi", "conversation_history": [{"role": "user"}]}`, api.MsgInvalidHistory},
		{"history content not string", `{"message": "hi", "conversation_history": [{"role": "user", "content": 1}]}`, api.MsgInvalidHistory},
		{"history unknown role", `{"message": "hi", "conversation_history": [{"role": "bot", "content": "x"}]}`, api.MsgInvalidHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := &stubTurns{}
			rec := httptest.NewRecorder()
			newChat(turns).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
			if turns.calls != 0 {
				t.Error("invalid request reached the turn handler")
			}
		})
	}
}

func TestChatHandler_MissingHistoryIsEmpty(t *testing.T) {
	turns := &stubTurns{result: &conversation.TurnResult{Reply: "hi"}}
	rec := httptest.NewRecorder()
	newChat(turns).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(`{"message": "hello"}`)))

	if rec.Code != http.StatusOK || turns.calls != 1 || len(turns.gotHistory) != 0 {
		t.Errorf("status = %d, calls = %d, history = %v", rec.Code, turns.calls, turns.gotHistory)
	}
}

func TestChatHandler_BodyTooLarge(t *testing.T) {
	h := NewChatHandler(&stubTurns{}, apology, 32, nil)
	rec := httptest.NewRecorder()
	body := `{"message": "` + strings.Repeat("x", 100) + `"}`
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(body)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestChatHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "provider failure",
			err:  &conversation.UpstreamError{Provider: "deepseek", Cause: &providers.ProviderError{Provider: "deepseek", StatusCode: 502, Message: "bad gateway"}},
			want: apology,
		},
		{
			name: "empty reply",
			err:  &conversation.UpstreamError{Provider: "deepseek", Cause: &providers.EmptyResponseError{Provider: "deepseek"}},
			want: api.MsgNoReply,
		},
		{
			name: "unknown error",
			err:  errors.New("boom"),
			want: apology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newChat(&stubTurns{err: tt.err}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(`{"message": "hi"}`)))

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.want {
				t.Errorf("error = %q, want %q", body["error"], tt.want)
			}
			if strings.Contains(body["error"], "bad gateway") {
				t.Error("provider details leaked")
			}
		})
	}
}

func TestGreetingHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewGreetingHandler("Hi there!").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chatbot/greeting", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := decodeBody(t, rec)["greeting"]; got != "Hi there!" {
		t.Errorf("greeting = %q", got)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	body := decodeBody(t, rec)
	if rec.Code != http.StatusOK || body["status"] != "healthy" || body["message"] != "API is running correctly" {
		t.Errorf("status = %d, body = %v", rec.Code, body)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}
