package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rreusch2/fluxstreams/pkg/api"
	"github.com/rreusch2/fluxstreams/pkg/api/types"
	"github.com/rreusch2/fluxstreams/pkg/conversation"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
)

// TurnHandler runs one conversation turn. *conversation.Handler
// implements it.
type TurnHandler interface {
	Handle(ctx context.Context, userMessage string, history []conversation.Message) (*conversation.TurnResult, error)
}

// ChatHandler serves POST /api/chatbot.
type ChatHandler struct {
	turns        TurnHandler
	apology      string
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewChatHandler creates the chat endpoint.
func NewChatHandler(turns TurnHandler, apology string, maxBodyBytes int64, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		turns:        turns,
		apology:      apology,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx, h.logger)

	message, history, err := api.ParseChatRequest(w, r, h.maxBodyBytes)
	if err != nil {
		status, msg := api.HandleError(err, h.apology)
		logger.Warn("chat request rejected", "error", err)
		types.WriteError(w, status, msg)
		return
	}

	logger.Debug("processing message", "history_length", len(history))

	result, err := h.turns.Handle(ctx, message, history)
	if err != nil {
		status, msg := api.HandleError(err, h.apology)
		types.WriteError(w, status, msg)
		return
	}

	types.WriteJSON(w, http.StatusOK, types.ChatResponse{Response: result.Reply})
}
