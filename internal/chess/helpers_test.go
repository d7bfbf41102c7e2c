package chess

import (
	"sort"
	"strings"
	"testing"
)

func sq(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParsePosition(s)
	if err != nil {
		t.Fatalf("parse square %q: %v", s, err)
	}
	return p
}

func mv(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	if err != nil {
		t.Fatalf("parse move %q: %v", s, err)
	}
	return m
}

func place(t *testing.T, b *Board, square string, color Color, typ PieceType) {
	t.Helper()
	if err := b.SetPiece(sq(t, square), Piece{Color: color, Type: typ}); err != nil {
		t.Fatalf("place %s %s on %s: %v", color, typ, square, err)
	}
}

func gameFromFEN(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen)
	if err != nil {
		t.Fatalf("load %q: %v", fen, err)
	}
	return g
}

func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, s := range moves {
		if _, err := g.MakeMove(mv(t, s)); err != nil {
			t.Fatalf("move %s: %v", s, err)
		}
	}
}

// moveStrings renders moves in long algebraic form, sorted.
func moveStrings(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func destinations(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To.String())
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// boardOf builds a board from space-separated tokens such as "Ke1 qd8",
// uppercase letters for White.
func boardOf(t *testing.T, pieces string) *Board {
	t.Helper()
	b := NewBoard()
	for _, tok := range strings.Fields(pieces) {
		if len(tok) != 3 {
			t.Fatalf("bad piece token %q", tok)
		}
		typ, ok := pieceTypeFromLetter(tok[0])
		if !ok {
			t.Fatalf("bad piece letter in %q", tok)
		}
		color := Black
		if tok[0] >= 'A' && tok[0] <= 'Z' {
			color = White
		}
		place(t, b, tok[1:], color, typ)
	}
	return b
}
