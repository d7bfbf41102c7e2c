package model

import "github.com/benbeisheim/chess-backend/internal/chess"

// BoardState is the board as clients draw it: Board[0] is rank 8 and
// Board[i][0] is the a-file.
type BoardState struct {
	Board             [][]*chess.Piece `json:"board"`
	BlackKingPosition *chess.Position  `json:"blackKingPosition"`
	WhiteKingPosition *chess.Position  `json:"whiteKingPosition"`
}

func newBoardState(b *chess.Board) BoardState {
	state := BoardState{Board: make([][]*chess.Piece, 8)}
	for i := range state.Board {
		state.Board[i] = make([]*chess.Piece, 8)
	}
	for _, sq := range b.Squares() {
		pc := sq.Piece
		state.Board[8-sq.Position.Row][sq.Position.Col-1] = &pc
	}
	if pos, err := b.FindKing(chess.White); err == nil {
		state.WhiteKingPosition = &pos
	}
	if pos, err := b.FindKing(chess.Black); err == nil {
		state.BlackKingPosition = &pos
	}
	return state
}
