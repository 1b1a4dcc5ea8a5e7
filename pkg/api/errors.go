package api

import (
	"errors"
	"net/http"

	"github.com/rreusch2/fluxstreams/pkg/conversation"
	"github.com/rreusch2/fluxstreams/pkg/providers"
)

// MsgNoReply is shown when the model answered with nothing usable.
const MsgNoReply = "Sorry, I couldn't generate a response."

// HandleError maps a turn error to a status and user-facing message.
// Provider details never reach the client.
func HandleError(err error, apology string) (int, string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status, reqErr.Message
	}

	if errors.Is(err, conversation.ErrInvalidInput) {
		return http.StatusBadRequest, MsgMessageRequired
	}

	var emptyErr *providers.EmptyResponseError
	if errors.As(err, &emptyErr) {
		return http.StatusInternalServerError, MsgNoReply
	}

	return http.StatusInternalServerError, apology
}
