package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeMove            MessageType = "move"
	MessageTypePromote         MessageType = "promote"
	MessageTypeCancelPromotion MessageType = "cancelPromotion"
	MessageTypeLegalMoves      MessageType = "legalMoves"

	// server -> client; legalMoves is also the reply type
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message envelope.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

func NewError(err error) Message {
	// an ErrorPayload always marshals
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Error: err.Error()})
	return msg
}
