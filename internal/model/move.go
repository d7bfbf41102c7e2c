package model

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

// WSMove is a move as clients send it: algebraic squares and an optional
// promotion piece ("queen" or "q").
type WSMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

func (m WSMove) ToMove() (chess.Move, error) {
	from, err := chess.ParsePosition(m.From)
	if err != nil {
		return chess.Move{}, fmt.Errorf("from: %w", err)
	}
	to, err := chess.ParsePosition(m.To)
	if err != nil {
		return chess.Move{}, fmt.Errorf("to: %w", err)
	}
	move := chess.Move{From: from, To: to}
	if m.Promotion != "" {
		t, err := chess.ParsePieceType(m.Promotion)
		if err != nil {
			return chess.Move{}, fmt.Errorf("promotion: %w", err)
		}
		move.Promotion = t
	}
	return move, nil
}

// Move groups a white ply with the black reply, as shown in a score sheet.
type Move struct {
	WhitePly *chess.Ply `json:"whitePly"`
	BlackPly *chess.Ply `json:"blackPly"`
}

func moveHistory(plies []chess.Ply) []Move {
	history := make([]Move, 0, (len(plies)+1)/2)
	for i := range plies {
		ply := plies[i]
		if ply.Piece.Color == chess.White || len(history) == 0 || history[len(history)-1].BlackPly != nil {
			history = append(history, Move{})
		}
		last := &history[len(history)-1]
		if ply.Piece.Color == chess.White {
			last.WhitePly = &ply
		} else {
			last.BlackPly = &ply
		}
	}
	return history
}
