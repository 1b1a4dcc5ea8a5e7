package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests rejected before any external call.
var ErrInvalidInput = errors.New("invalid input")

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one entry of the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DecodeHistory parses a conversation_history JSON value. A missing or
// null value is an empty history.
func DecodeHistory(raw json.RawMessage) ([]Message, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: conversation history is not valid JSON", ErrInvalidInput)
	}
	return ValidateHistory(items)
}

// ValidateHistory checks a decoded JSON value. It must be an array whose
// every element is an object with string "role" and "content" fields and a
// known role. One bad element rejects the whole history.
func ValidateHistory(items any) ([]Message, error) {
	if items == nil {
		return nil, nil
	}
	list, ok := items.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: conversation history must be an array", ErrInvalidInput)
	}

	history := make([]Message, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: history[%d] is not an object", ErrInvalidInput, i)
		}
		role, ok := obj["role"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: history[%d].role must be a string", ErrInvalidInput, i)
		}
		content, ok := obj["content"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: history[%d].content must be a string", ErrInvalidInput, i)
		}
		if !Role(role).Valid() {
			return nil, fmt.Errorf("%w: history[%d].role %q is not user, assistant or system", ErrInvalidInput, i, role)
		}
		history = append(history, Message{Role: Role(role), Content: content})
	}
	return history, nil
}
