package handlers

import (
	"net/http"

	"github.com/rreusch2/fluxstreams/pkg/api/types"
)

// GreetingHandler serves GET /api/chatbot/greeting.
type GreetingHandler struct {
	greeting string
}

// NewGreetingHandler returns a handler that always answers with greeting.
func NewGreetingHandler(greeting string) *GreetingHandler {
	return &GreetingHandler{greeting: greeting}
}

// ServeHTTP implements http.Handler.
func (h *GreetingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types.WriteJSON(w, http.StatusOK, types.GreetingResponse{Greeting: h.greeting})
}
