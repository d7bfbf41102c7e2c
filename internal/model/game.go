package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/store"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

var (
	ErrGameFull           = errors.New("game is full")
	ErrNotInGame          = errors.New("player not in game")
	ErrWaitingForOpponent = errors.New("waiting for opponent")
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game hosts one chess game for its two players and any spectators. Every
// engine call happens under mu, so at most one move is in flight per game.
// Broadcasts are sent while mu is held, so clients see states in order.
// Lock order is mu, then connections.mu.
type Game struct {
	ID          string
	mu          sync.Mutex
	engine      *chess.Game
	startFEN    string
	players     Players
	resignedBy  chess.Color
	sound       string
	revision    int64
	connections *GameConnections
	log         zerolog.Logger

	// persistMu orders snapshot writes; savedRevision is the last one stored.
	persistMu     sync.Mutex
	savedRevision int64
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

type GameState struct {
	ID             string         `json:"id"`
	Sound          string         `json:"sound"`
	Board          BoardState     `json:"boardState"`
	FEN            string         `json:"fen"`
	ToMove         chess.Color    `json:"toMove"`
	Status         chess.Status   `json:"status"`
	IsCheck        bool           `json:"isCheck"`
	MoveHistory    []Move         `json:"moveHistory"`
	CapturedPieces chess.Captured `json:"capturedPieces"`
	LastMove       *chess.Ply     `json:"lastMove"`
	Players        Players        `json:"players"`
}

func NewGame(id string, log zerolog.Logger) *Game {
	return &Game{
		ID:            id,
		engine:        chess.NewGame(),
		startFEN:      chess.StartFEN,
		connections:   NewGameConnections(),
		log:           log.With().Str("game_id", id).Logger(),
		savedRevision: -1,
	}
}

// RestoreGame replays a snapshot from its starting position.
func RestoreGame(snap store.Snapshot, log zerolog.Logger) (*Game, error) {
	engine, err := chess.NewGameFromFEN(snap.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snap.ID, err)
	}
	for i, s := range snap.Moves {
		m, err := chess.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("restore %s: move %d: %w", snap.ID, i+1, err)
		}
		if _, err := engine.MakeMove(m); err != nil {
			return nil, fmt.Errorf("restore %s: move %d (%s): %w", snap.ID, i+1, s, err)
		}
	}
	if snap.ResignedBy != "" {
		if err := engine.Resign(snap.ResignedBy); err != nil {
			return nil, fmt.Errorf("restore %s: %w", snap.ID, err)
		}
	}

	g := NewGame(snap.ID, log)
	g.engine = engine
	g.startFEN = snap.StartFEN
	g.resignedBy = snap.ResignedBy
	g.revision = snap.Revision
	g.savedRevision = snap.Revision
	if snap.White != "" {
		g.players.White = ClientPlayer{ID: snap.White, Color: chess.White}
	}
	if snap.Black != "" {
		g.players.Black = ClientPlayer{ID: snap.Black, Color: chess.Black}
	}
	return g, nil
}

// AddPlayer seats playerID in the first free color. A player already seated
// gets their existing color back.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: chess.White}
		g.revision++
		g.log.Info().Str("player_id", playerID).Msg("seated white")
		return chess.White, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: chess.Black}
		g.revision++
		g.log.Info().Str("player_id", playerID).Msg("seated black")
		return chess.Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) colorOf(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case g.players.White.ID == playerID:
		return chess.White, true
	case g.players.Black.ID == playerID:
		return chess.Black, true
	}
	return "", false
}

func (g *Game) ColorOf(playerID string) (chess.Color, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.colorOf(playerID)
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	_, ok := g.ColorOf(playerID)
	return ok
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() GameState {
	status := g.engine.Status()
	st := GameState{
		ID:             g.ID,
		Sound:          g.sound,
		Board:          newBoardState(g.engine.Board()),
		FEN:            g.engine.FEN(),
		ToMove:         g.engine.Turn(),
		Status:         status,
		IsCheck:        status.InCheck(),
		MoveHistory:    moveHistory(g.engine.History()),
		CapturedPieces: g.engine.CapturedPieces(),
		Players:        g.players,
	}
	if last, ok := g.engine.LastMove(); ok {
		st.LastMove = &last
	}
	return st
}

// ValidMoves lists legal moves for the piece on an algebraic square.
func (g *Game) ValidMoves(square string) ([]chess.Move, error) {
	pos, err := chess.ParsePosition(square)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.ValidMoves(pos)
}

// MakeMove applies a move for playerID, who must hold the side to move.
// The new state is broadcast to every connection once the move is accepted.
func (g *Game) MakeMove(playerID string, wsMove WSMove) (chess.Ply, error) {
	move, err := wsMove.ToMove()
	if err != nil {
		return chess.Ply{}, fmt.Errorf("%w: %w", chess.ErrIllegalMove, err)
	}

	g.mu.Lock()
	color, ok := g.colorOf(playerID)
	if !ok {
		g.mu.Unlock()
		return chess.Ply{}, ErrNotInGame
	}
	if g.players.White.ID == "" || g.players.Black.ID == "" {
		g.mu.Unlock()
		return chess.Ply{}, ErrWaitingForOpponent
	}
	if color != g.engine.Turn() {
		g.mu.Unlock()
		return chess.Ply{}, chess.ErrNotYourTurn
	}
	ply, err := g.engine.MakeMove(move)
	if err != nil {
		g.mu.Unlock()
		return chess.Ply{}, err
	}
	g.sound = soundFor(ply, g.engine.Status())
	g.revision++
	state := g.state()
	g.broadcastState(state)
	g.mu.Unlock()

	g.log.Debug().
		Str("player_id", playerID).
		Str("move", move.String()).
		Str("notation", ply.Notation).
		Str("status", string(state.Status.State)).
		Msg("move applied")
	return ply, nil
}

func soundFor(ply chess.Ply, status chess.Status) string {
	switch {
	case status.InCheck():
		return "check"
	case ply.CapturedPiece != nil:
		return "capture"
	}
	return "move"
}

func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	color, ok := g.colorOf(playerID)
	if !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	if err := g.engine.Resign(color); err != nil {
		g.mu.Unlock()
		return err
	}
	g.resignedBy = color
	g.sound = ""
	g.revision++
	g.broadcastState(g.state())
	g.mu.Unlock()

	g.log.Info().Str("player_id", playerID).Str("color", string(color)).Msg("player resigned")
	return nil
}

func (g *Game) Snapshot() store.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := g.engine.History()
	moves := make([]string, 0, len(history))
	for _, ply := range history {
		moves = append(moves, ply.Move().String())
	}
	return store.Snapshot{
		ID:         g.ID,
		StartFEN:   g.startFEN,
		Moves:      moves,
		White:      g.players.White.ID,
		Black:      g.players.Black.ID,
		ResignedBy: g.resignedBy,
		Revision:   g.revision,
		UpdatedAt:  time.Now().UTC(),
	}
}

// Persist writes the current snapshot to st. Writes for one game are
// serialized and each one snapshots after the previous finished, so a
// snapshot never lands on top of a newer one.
func (g *Game) Persist(ctx context.Context, st store.Store) error {
	g.persistMu.Lock()
	defer g.persistMu.Unlock()

	snap := g.Snapshot()
	if snap.Revision <= g.savedRevision {
		return nil
	}
	if err := st.Save(ctx, snap); err != nil {
		return err
	}
	g.savedRevision = snap.Revision
	return nil
}

// RegisterConnection attaches conn for playerID and pushes the current state.
// Anyone may watch; a second connection for the same player is refused.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		g.log.Warn().Str("player_id", playerID).Msg("rejecting duplicate connection")
		if err := conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		); err != nil {
			g.log.Debug().Err(err).Str("player_id", playerID).Msg("write close to duplicate connection")
		}
		if err := conn.Close(); err != nil {
			g.log.Debug().Err(err).Str("player_id", playerID).Msg("close duplicate connection")
		}
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.log.Debug().Str("player_id", playerID).Msg("connection registered")

	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastState(g.state())
	return nil
}

// UnregisterConnection drops conn only if it is still the player's current one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		g.log.Debug().Str("player_id", playerID).Msg("connection unregistered")
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	return len(g.connections.connections)
}

// Send writes one message to playerID's connection, if any.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	conn, ok := g.connections.connections[playerID]
	if !ok {
		return nil
	}
	return conn.WriteJSON(msg)
}

// broadcastState writes under the connections lock so writes to a single
// connection never interleave. Callers hold mu.
func (g *Game) broadcastState(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		g.log.Error().Err(err).Msg("marshal game state")
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			g.log.Warn().Err(err).Str("player_id", playerID).Msg("dropping connection after failed write")
			delete(g.connections.connections, playerID)
			continue
		}
	}
}
