package chess

import "fmt"

// Position is a square on the board. Row and Col are both 1-based; row 1 is
// White's back rank and col 1 is the a-file.
type Position struct {
	Row int `json:"row"`
	Col int `json:"column"`
}

func NewPosition(row, col int) (Position, error) {
	p := Position{Row: row, Col: col}
	if !p.Valid() {
		return Position{}, fmt.Errorf("%w: row %d, column %d", ErrInvalidPosition, row, col)
	}
	return p, nil
}

// MustPosition is NewPosition for constant squares; it panics on bad input.
func MustPosition(row, col int) Position {
	p, err := NewPosition(row, col)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Valid() bool {
	return p.Row >= 1 && p.Row <= 8 && p.Col >= 1 && p.Col <= 8
}

// index maps a valid position onto the flat board array.
func (p Position) index() int {
	return (p.Row-1)*8 + (p.Col - 1)
}

func positionFromIndex(i int) Position {
	return Position{Row: i/8 + 1, Col: i%8 + 1}
}

func (p Position) offset(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col-1, p.Row)
}

func (p Position) file() string {
	return fmt.Sprintf("%c", 'a'+p.Col-1)
}

// ParsePosition reads an algebraic square such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	col := int(s[0]-'a') + 1
	row := int(s[1]-'0')
	p := Position{Row: row, Col: col}
	if !p.Valid() {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return p, nil
}
