// Package types defines the JSON bodies exchanged with the chat widget.
package types

import (
	"encoding/json"
	"net/http"
)

// ChatRequest is the body of POST /api/chatbot. Fields stay raw so the
// handler can report type errors with the widget's expected messages.
type ChatRequest struct {
	Message             json.RawMessage `json:"message"`
	ConversationHistory json.RawMessage `json:"conversation_history"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// GreetingResponse carries the opening line of a chat.
type GreetingResponse struct {
	Greeting string `json:"greeting"`
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": message} with status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}
