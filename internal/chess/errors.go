package chess

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPosition = errors.New("position out of bounds")
	ErrNoPiece         = errors.New("no piece at square")
	ErrIllegalMove     = errors.New("invalid move")
	ErrNotYourTurn     = fmt.Errorf("%w: not your turn", ErrIllegalMove)
	ErrGameOver        = errors.New("game is over")
	ErrInvalidFEN      = errors.New("invalid FEN")
	ErrInvalidPiece    = errors.New("invalid piece")

	// ErrKingMissing reports a board without a king for a color. Boards only
	// reach this state when loaded without going through SetBoard.
	ErrKingMissing = errors.New("board integrity: king missing")
	ErrExtraKing   = errors.New("board integrity: more than one king")

	ErrIllegalPosition = errors.New("illegal position")
)
