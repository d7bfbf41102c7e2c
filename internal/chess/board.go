package chess

import (
	"encoding/json"
	"fmt"
)

// Board is an 8x8 grid of optional pieces. The zero value is an empty board.
// Boards are plain values: assignment copies every square, and two boards are
// equal (==) when every square holds the same piece.
type Board struct {
	squares [64]Piece
}

// Square pairs a position with the piece standing on it.
type Square struct {
	Position Position `json:"position"`
	Piece    Piece    `json:"piece"`
}

func NewBoard() *Board {
	return &Board{}
}

func NewStandardBoard() *Board {
	b := &Board{}
	b.ResetToStandardSetup()
	return b
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func (b *Board) ResetToStandardSetup() {
	b.squares = [64]Piece{}
	for col := 1; col <= 8; col++ {
		b.squares[Position{Row: 1, Col: col}.index()] = Piece{Color: White, Type: backRank[col-1]}
		b.squares[Position{Row: 2, Col: col}.index()] = Piece{Color: White, Type: Pawn}
		b.squares[Position{Row: 7, Col: col}.index()] = Piece{Color: Black, Type: Pawn}
		b.squares[Position{Row: 8, Col: col}.index()] = Piece{Color: Black, Type: backRank[col-1]}
	}
}

// Piece returns the piece at p. ok is false for an empty or off-board square.
func (b *Board) Piece(p Position) (Piece, bool) {
	if !p.Valid() {
		return Piece{}, false
	}
	pc := b.squares[p.index()]
	return pc, !pc.IsZero()
}

func (b *Board) IsEmpty(p Position) bool {
	_, ok := b.Piece(p)
	return !ok
}

// SetPiece places pc on p, replacing whatever was there. Off-board positions
// and malformed pieces are rejected without touching the board.
func (b *Board) SetPiece(p Position, pc Piece) error {
	if !p.Valid() {
		return fmt.Errorf("set %v: %w", p, ErrInvalidPosition)
	}
	if !pc.Valid() {
		return fmt.Errorf("set %v: %w: %v", p, ErrInvalidPiece, pc)
	}
	b.squares[p.index()] = pc
	return nil
}

// Clear empties p. Off-board positions are rejected.
func (b *Board) Clear(p Position) error {
	if !p.Valid() {
		return fmt.Errorf("clear %v: %w", p, ErrInvalidPosition)
	}
	b.squares[p.index()] = Piece{}
	return nil
}

func (b *Board) Equal(other *Board) bool {
	return b.squares == other.squares
}

// Squares lists the occupied squares from a1 to h8.
func (b *Board) Squares() []Square {
	out := make([]Square, 0, 32)
	for i, pc := range b.squares {
		if pc.IsZero() {
			continue
		}
		out = append(out, Square{Position: positionFromIndex(i), Piece: pc})
	}
	return out
}

func (b *Board) piecesOf(color Color) []Square {
	out := make([]Square, 0, 16)
	for i, pc := range b.squares {
		if pc.Color == color {
			out = append(out, Square{Position: positionFromIndex(i), Piece: pc})
		}
	}
	return out
}

// FindKing locates the king of color. A board without one is corrupt.
func (b *Board) FindKing(color Color) (Position, error) {
	want := Piece{Color: color, Type: King}
	for i, pc := range b.squares {
		if pc == want {
			return positionFromIndex(i), nil
		}
	}
	return Position{}, fmt.Errorf("%w: %s", ErrKingMissing, color)
}

// Validate checks that each color has exactly one king.
func (b *Board) Validate() error {
	for _, color := range []Color{White, Black} {
		kings := 0
		for _, pc := range b.squares {
			if pc.Color == color && pc.Type == King {
				kings++
			}
		}
		switch {
		case kings == 0:
			return fmt.Errorf("%w: %s", ErrKingMissing, color)
		case kings > 1:
			return fmt.Errorf("%w: %s has %d", ErrExtraKing, color, kings)
		}
	}
	return nil
}

// apply moves the piece for m without any legality checks and returns the
// piece that was captured, if any.
func (b *Board) apply(m Move) (moved Piece, captured Piece) {
	moved = b.squares[m.From.index()]
	captured = b.squares[m.To.index()]
	b.squares[m.From.index()] = Piece{}
	landing := moved
	if m.IsPromotion() {
		landing.Type = m.Promotion
	}
	b.squares[m.To.index()] = landing
	return moved, captured
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Squares())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var squares []Square
	if err := json.Unmarshal(data, &squares); err != nil {
		return err
	}
	var nb Board
	for _, sq := range squares {
		if !nb.IsEmpty(sq.Position) {
			return fmt.Errorf("duplicate square %v", sq.Position)
		}
		if err := nb.SetPiece(sq.Position, sq.Piece); err != nil {
			return err
		}
	}
	*b = nb
	return nil
}

// String draws the board from White's side, rank 8 first.
func (b *Board) String() string {
	buf := make([]byte, 0, 72)
	for row := 8; row >= 1; row-- {
		for col := 1; col <= 8; col++ {
			pc := b.squares[Position{Row: row, Col: col}.index()]
			if pc.IsZero() {
				buf = append(buf, '.')
			} else {
				buf = append(buf, pc.FEN())
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
