package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeValidMoves MessageType = "validMoves"
	MessageTypeResign     MessageType = "resign"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ValidMovesRequest asks for the legal moves of the piece on Square.
type ValidMovesRequest struct {
	Square string `json:"square"`
}

func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

func ErrorMessage(err error) Message {
	data, _ := json.Marshal(err.Error())
	return Message{Type: MessageTypeError, Payload: data}
}
