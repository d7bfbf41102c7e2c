package chess

import (
	"fmt"
	"strings"
)

// Move is a from/to pair. Promotion is empty unless a pawn lands on its far rank.
type Move struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

func (m Move) IsPromotion() bool {
	return m.Promotion != ""
}

// String renders long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.letter())
	}
	return s
}

// ParseMove reads long algebraic form as produced by Move.String.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	from, err := ParsePosition(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		t, ok := pieceTypeFromLetter(s[4])
		if !ok || t == King || t == Pawn {
			return Move{}, fmt.Errorf("%w: promotion %q", ErrIllegalMove, s[4:])
		}
		m.Promotion = t
	}
	return m, nil
}

// Ply is an applied move together with what it did to the board.
type Ply struct {
	Piece         Piece     `json:"piece"`
	From          Position  `json:"from"`
	To            Position  `json:"to"`
	CapturedPiece *Piece    `json:"capturedPiece"`
	Promotion     PieceType `json:"promotion,omitempty"`
	Notation      string    `json:"notation"`
}

func (p Ply) Move() Move {
	return Move{From: p.From, To: p.To, Promotion: p.Promotion}
}
