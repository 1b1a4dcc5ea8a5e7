package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rreusch2/fluxstreams/pkg/api/types"
	"github.com/rreusch2/fluxstreams/pkg/conversation"
)

// Messages returned to the widget for malformed requests.
const (
	MsgMessageRequired = "Message is required and must be a string."
	MsgInvalidHistory  = "Invalid conversation_history format."
	MsgBodyTooLarge    = "Request body is too large."
)

// RequestError is a client error with a user-facing message.
type RequestError struct {
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ParseChatRequest reads and validates a chat request body of at most
// maxBytes. A missing or null conversation_history is an empty history.
func ParseChatRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []conversation.Message, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, &RequestError{Status: http.StatusRequestEntityTooLarge, Message: MsgBodyTooLarge, Cause: err}
		}
		return "", nil, &RequestError{Status: http.StatusBadRequest, Message: MsgMessageRequired, Cause: err}
	}

	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", nil, &RequestError{Status: http.StatusBadRequest, Message: MsgMessageRequired, Cause: err}
	}

	var message string
	if len(req.Message) == 0 || json.Unmarshal(req.Message, &message) != nil {
		return "", nil, &RequestError{Status: http.StatusBadRequest, Message: MsgMessageRequired}
	}
	if strings.TrimSpace(message) == "" {
		return "", nil, &RequestError{Status: http.StatusBadRequest, Message: MsgMessageRequired, Cause: conversation.ErrInvalidInput}
	}

	history, err := conversation.DecodeHistory(req.ConversationHistory)
	if err != nil {
		return "", nil, &RequestError{Status: http.StatusBadRequest, Message: MsgInvalidHistory, Cause: err}
	}

	return message, history, nil
}
