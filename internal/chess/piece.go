package chess

import (
	"fmt"
	"strings"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// forward is the row delta a pawn of this color advances by.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) pawnStartRow() int {
	if c == White {
		return 2
	}
	return 7
}

// promotionRow is the opponent's back rank.
func (c Color) promotionRow() int {
	if c == White {
		return 8
	}
	return 1
}

func ParseColor(s string) (Color, error) {
	switch Color(strings.ToLower(s)) {
	case White:
		return White, nil
	case Black:
		return Black, nil
	}
	return "", fmt.Errorf("unknown color %q", s)
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// PromotionTypes lists the piece types a pawn may become, strongest first.
var PromotionTypes = []PieceType{Queen, Rook, Bishop, Knight}

func (t PieceType) Valid() bool {
	switch t {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

func (t PieceType) notation() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (t PieceType) letter() byte {
	if t == Pawn {
		return 'p'
	}
	return strings.ToLower(t.notation())[0]
}

func pieceTypeFromLetter(b byte) (PieceType, bool) {
	switch b {
	case 'k', 'K':
		return King, true
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	case 'p', 'P':
		return Pawn, true
	}
	return "", false
}

// ParsePieceType accepts either the full name ("queen") or a letter ("q").
func ParsePieceType(s string) (PieceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t := PieceType(s); t.Valid() {
		return t, nil
	}
	if len(s) == 1 {
		if t, ok := pieceTypeFromLetter(s[0]); ok {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: type %q", ErrInvalidPiece, s)
}

// Piece is a value; two pieces are equal when color and type match.
type Piece struct {
	Color Color     `json:"color"`
	Type  PieceType `json:"type"`
}

func (p Piece) IsZero() bool {
	return p == Piece{}
}

func (p Piece) Valid() bool {
	return p.Color.Valid() && p.Type.Valid()
}

// FEN returns the single-letter FEN symbol, uppercase for White.
func (p Piece) FEN() byte {
	l := p.Type.letter()
	if p.Color == White {
		return l - 'a' + 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return string(p.Color) + " " + string(p.Type)
}
