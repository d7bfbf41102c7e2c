package chess

import (
	"fmt"
	"strconv"
	"strings"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

// ParseFEN reads piece placement and side to move. Castling, en passant and
// clock fields are accepted but ignored.
func ParseFEN(fen string) (*Board, Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, "", fmt.Errorf("%w: expected placement and side to move in %q", ErrInvalidFEN, fen)
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, "", fmt.Errorf("%w: %d ranks", ErrInvalidFEN, len(ranks))
	}

	b := NewBoard()
	for i, rank := range ranks {
		row := 8 - i
		col := 1
		for j := 0; j < len(rank); j++ {
			c := rank[j]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			t, ok := pieceTypeFromLetter(c)
			if !ok {
				return nil, "", fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			color := Black
			if c >= 'A' && c <= 'Z' {
				color = White
			}
			if col > 8 {
				return nil, "", fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, row)
			}
			b.squares[Position{Row: row, Col: col}.index()] = Piece{Color: color, Type: t}
			col++
		}
		if col != 9 {
			return nil, "", fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, row, col-1)
		}
	}

	var turn Color
	switch fields[1] {
	case "w":
		turn = White
	case "b":
		turn = Black
	default:
		return nil, "", fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	return b, turn, nil
}

// parseFullmove reads the sixth FEN field, defaulting to 1 when absent.
func parseFullmove(fen string) (int, error) {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1, nil
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
	}
	return n, nil
}

// FormatFEN writes b with castling and en passant fields always "-".
func FormatFEN(b *Board, turn Color, fullmove int) string {
	var sb strings.Builder
	for row := 8; row >= 1; row-- {
		empty := 0
		for col := 1; col <= 8; col++ {
			pc := b.squares[Position{Row: row, Col: col}.index()]
			if pc.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.FEN())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 1 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if turn == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, fullmove)
	return sb.String()
}
