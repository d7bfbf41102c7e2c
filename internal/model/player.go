package model

import "github.com/benbeisheim/chess-backend/internal/chess"

type Player struct {
	ID    string
	Color chess.Color
}

type ClientPlayer struct {
	ID    string      `json:"id"`
	Color chess.Color `json:"color"`
}

// Conn is the part of a websocket connection a game broadcasts through.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// MatchFoundEvent tells a queued player which game and color they were given.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}
