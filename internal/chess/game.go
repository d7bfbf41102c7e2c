package chess

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

type GameState string

const (
	InProgress GameState = "in_progress"
	Check      GameState = "check"
	Checkmate  GameState = "checkmate"
	Stalemate  GameState = "stalemate"
	Resigned   GameState = "resigned"
)

// Status is scoped to the side to move. Winner is set once the game is
// decided by checkmate or resignation.
type Status struct {
	State  GameState `json:"state"`
	ToMove Color     `json:"toMove"`
	Winner Color     `json:"winner,omitempty"`
}

func (s Status) IsOver() bool {
	switch s.State {
	case Checkmate, Stalemate, Resigned:
		return true
	}
	return false
}

func (s Status) InCheck() bool {
	return s.State == Check || s.State == Checkmate
}

// Game owns one board and tracks turn, status and move history. It is not
// safe for concurrent use; hosts must serialize calls per game.
type Game struct {
	board   Board
	status  Status
	history []Ply

	// Fullmove number and side to move when the position was set up.
	startMove int
	startTurn Color
}

// NewGame starts from the standard setup with White to move.
func NewGame() *Game {
	return &Game{
		board:     *NewStandardBoard(),
		status:    Status{State: InProgress, ToMove: White},
		startMove: 1,
		startTurn: White,
	}
}

func NewGameFromBoard(b *Board, turn Color) (*Game, error) {
	g := &Game{}
	if err := g.SetBoard(b, turn); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGameFromFEN sets up the FEN position and continues its move numbering.
func NewGameFromFEN(fen string) (*Game, error) {
	b, turn, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	fullmove, err := parseFullmove(fen)
	if err != nil {
		return nil, err
	}
	g, err := NewGameFromBoard(b, turn)
	if err != nil {
		return nil, err
	}
	g.startMove = fullmove
	return g, nil
}

// SetBoard replaces the board wholesale and clears the history. The board must
// hold one king per color and the side not to move must not be in check.
func (g *Game) SetBoard(b *Board, turn Color) error {
	if !turn.Valid() {
		return fmt.Errorf("%w: turn %q", ErrIllegalPosition, turn)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	exposed, err := InCheck(b, turn.Opposite())
	if err != nil {
		return err
	}
	if exposed {
		return fmt.Errorf("%w: %s is in check with %s to move", ErrIllegalPosition, turn.Opposite(), turn)
	}
	status, err := computeStatus(b, turn)
	if err != nil {
		return err
	}
	g.board = *b
	g.status = status
	g.history = nil
	g.startMove = 1
	g.startTurn = turn
	return nil
}

func (g *Game) Reset() {
	*g = *NewGame()
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board {
	b := g.board
	return &b
}

func (g *Game) Turn() Color {
	return g.status.ToMove
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) History() []Ply {
	return slices.Clone(g.history)
}

// LastMove returns the most recent ply, if any.
func (g *Game) LastMove() (Ply, bool) {
	if len(g.history) == 0 {
		return Ply{}, false
	}
	return g.history[len(g.history)-1], true
}

// ValidMoves lists the legal moves of the piece on p. An empty or off-board
// square yields no moves; the only error is a board integrity fault.
func (g *Game) ValidMoves(p Position) ([]Move, error) {
	if !p.Valid() {
		return []Move{}, nil
	}
	moves, err := LegalMoves(&g.board, p)
	if errors.Is(err, ErrNoPiece) {
		return []Move{}, nil
	}
	return moves, err
}

// MakeMove validates m against the side to move and the legal move set,
// applies it and recomputes status for the opponent. A rejected move leaves
// the game untouched.
func (g *Game) MakeMove(m Move) (Ply, error) {
	if g.status.IsOver() {
		return Ply{}, fmt.Errorf("%w: %s", ErrGameOver, g.status.State)
	}
	pc, ok := g.board.Piece(m.From)
	if !ok {
		return Ply{}, fmt.Errorf("%w: %w at %v", ErrIllegalMove, ErrNoPiece, m.From)
	}
	if pc.Color != g.status.ToMove {
		return Ply{}, ErrNotYourTurn
	}
	legal, err := LegalMoves(&g.board, m.From)
	if err != nil {
		return Ply{}, err
	}
	if !slices.Contains(legal, m) {
		return Ply{}, fmt.Errorf("%w: %v", ErrIllegalMove, m)
	}

	next := g.board
	_, captured := next.apply(m)
	status, err := computeStatus(&next, pc.Color.Opposite())
	if err != nil {
		return Ply{}, err
	}

	ply := Ply{
		Piece:     pc,
		From:      m.From,
		To:        m.To,
		Promotion: m.Promotion,
		Notation:  g.notation(m, pc, !captured.IsZero(), status),
	}
	if !captured.IsZero() {
		ply.CapturedPiece = &captured
	}

	g.board = next
	g.status = status
	g.history = append(g.history, ply)
	return ply, nil
}

// Resign ends the game in favour of color's opponent.
func (g *Game) Resign(color Color) error {
	if !color.Valid() {
		return fmt.Errorf("resign: unknown color %q", color)
	}
	if g.status.IsOver() {
		return fmt.Errorf("%w: %s", ErrGameOver, g.status.State)
	}
	g.status = Status{State: Resigned, ToMove: g.status.ToMove, Winner: color.Opposite()}
	return nil
}

// Captured lists the pieces taken by each color, in capture order.
type Captured struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func (g *Game) CapturedPieces() Captured {
	c := Captured{White: []Piece{}, Black: []Piece{}}
	for _, ply := range g.history {
		if ply.CapturedPiece == nil {
			continue
		}
		if ply.Piece.Color == White {
			c.White = append(c.White, *ply.CapturedPiece)
		} else {
			c.Black = append(c.Black, *ply.CapturedPiece)
		}
	}
	return c
}

func (g *Game) FEN() string {
	return FormatFEN(&g.board, g.status.ToMove, g.fullmove())
}

// fullmove counts from the setup position; the number rises after each
// Black move.
func (g *Game) fullmove() int {
	plies := len(g.history)
	if g.startTurn == Black {
		plies++
	}
	return g.startMove + plies/2
}

func computeStatus(b *Board, toMove Color) (Status, error) {
	inCheck, err := InCheck(b, toMove)
	if err != nil {
		return Status{}, err
	}
	canMove, err := HasLegalMove(b, toMove)
	if err != nil {
		return Status{}, err
	}
	s := Status{State: InProgress, ToMove: toMove}
	switch {
	case inCheck && !canMove:
		s.State = Checkmate
		s.Winner = toMove.Opposite()
	case !canMove:
		s.State = Stalemate
	case inCheck:
		s.State = Check
	}
	return s, nil
}

// notation renders m in short algebraic form as seen before it is applied.
func (g *Game) notation(m Move, pc Piece, capture bool, after Status) string {
	s := pc.Type.notation()
	if pc.Type == Pawn {
		if capture {
			s += m.From.file()
		}
	} else {
		s += g.disambiguation(m, pc)
	}
	if capture {
		s += "x"
	}
	s += m.To.String()
	if m.IsPromotion() {
		s += "=" + m.Promotion.notation()
	}
	switch after.State {
	case Checkmate:
		s += "#"
	case Check:
		s += "+"
	}
	return s
}

// disambiguation returns the file, rank or full square of the origin when
// another piece of the same kind could also legally reach m.To.
func (g *Game) disambiguation(m Move, pc Piece) string {
	sameFile, sameRow, rivals := false, false, false
	for _, sq := range g.board.piecesOf(pc.Color) {
		if sq.Piece.Type != pc.Type || sq.Position == m.From {
			continue
		}
		moves, err := LegalMoves(&g.board, sq.Position)
		if err != nil {
			continue
		}
		if !slices.ContainsFunc(moves, func(o Move) bool { return o.To == m.To }) {
			continue
		}
		rivals = true
		if sq.Position.Col == m.From.Col {
			sameFile = true
		}
		if sq.Position.Row == m.From.Row {
			sameRow = true
		}
	}
	switch {
	case !rivals:
		return ""
	case !sameFile:
		return m.From.file()
	case !sameRow:
		return fmt.Sprintf("%d", m.From.Row)
	}
	return m.From.String()
}
