package chess

import (
	"errors"
	"testing"
)

func TestParseFENStartPosition(t *testing.T) {
	b, turn, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if turn != White {
		t.Fatalf("turn = %s, want white", turn)
	}
	if !b.Equal(NewStandardBoard()) {
		t.Fatalf("parsed board differs from standard setup:\n%s", b.String())
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		"4k3/8/8/8/8/5N2/8/1N2K3 w - - 0 1",
	}
	for _, fen := range fens {
		b, turn, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := FormatFEN(b, turn, 1); got != fen {
			t.Fatalf("FormatFEN = %q, want %q", got, fen)
		}
	}
}

func TestFENIgnoresCastlingAndClocks(t *testing.T) {
	b, turn, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if turn != Black {
		t.Fatalf("turn = %s, want black", turn)
	}
	if pc, _ := b.Piece(sq(t, "e4")); pc != (Piece{Color: White, Type: Pawn}) {
		t.Fatalf("e4 = %v, want white pawn", pc)
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x - - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"rnbqkbnr/pppppppp/7/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"rnbqkbnrr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"rnbqkbnx/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
	}
	for _, fen := range bad {
		if _, _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("ParseFEN(%q): expected ErrInvalidFEN, got %v", fen, err)
		}
	}
}

func TestGameFENTracksMoveNumber(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4", "e7e5", "g1f3")
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b - - 0 2"
	if got := g.FEN(); got != want {
		t.Fatalf("FEN() = %q, want %q", got, want)
	}
	loaded := gameFromFEN(t, want)
	if !loaded.Board().Equal(g.Board()) || loaded.Turn() != Black {
		t.Fatalf("reloaded game differs from the original")
	}
}

func TestFENMoveNumber(t *testing.T) {
	tests := []struct {
		name  string
		start string
		moves []string
		want  string
	}{
		{
			name:  "black moves first",
			start: "4k3/8/8/8/8/8/8/4K3 b - - 0 1",
			moves: []string{"e8d8"},
			want:  "3k4/8/8/8/8/8/8/4K3 w - - 0 2",
		},
		{
			name:  "continues from the setup number",
			start: "4k3/8/8/8/8/8/8/4K3 w - - 0 30",
			moves: []string{"e1d1", "e8d8"},
			want:  "3k4/8/8/8/8/8/8/3K4 w - - 0 31",
		},
		{
			name:  "black first from a later move",
			start: "4k3/8/8/8/8/8/8/4K3 b - - 3 12",
			moves: []string{"e8d8", "e1d1"},
			want:  "3k4/8/8/8/8/8/8/3K4 b - - 0 13",
		},
		{
			name:  "missing counters",
			start: "4k3/8/8/8/8/8/8/4K3 w",
			moves: []string{"e1d1"},
			want:  "4k3/8/8/8/8/8/8/3K4 b - - 0 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gameFromFEN(t, tt.start)
			play(t, g, tt.moves...)
			if got := g.FEN(); got != tt.want {
				t.Fatalf("FEN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFENRejectsBadMoveNumber(t *testing.T) {
	for _, fen := range []string{
		"4k3/8/8/8/8/8/8/4K3 w - - 0 0",
		"4k3/8/8/8/8/8/8/4K3 w - - 0 x",
	} {
		if _, err := NewGameFromFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("NewGameFromFEN(%q): expected ErrInvalidFEN, got %v", fen, err)
		}
	}
}
