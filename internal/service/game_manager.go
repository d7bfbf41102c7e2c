// service/game_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNotQueued    = errors.New("player not in matchmaking")
	ErrGameActive   = errors.New("game is still in progress")
)

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	pendingMatches   map[string]model.MatchFoundEvent
	store            store.Store
	log              zerolog.Logger
	mu               sync.RWMutex
}

func NewGameManager(st store.Store, log zerolog.Logger) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		pendingMatches:   make(map[string]model.MatchFoundEvent),
		store:            st,
		log:              log,
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.matchPlayers(ctx)
		}
	}
}

// matchPlayers seats the two longest-waiting players in a new game, as many
// times as the queue allows. Popping and notifying happen under gm.mu so a
// waiter never sees a player who is neither queued nor matched.
func (gm *GameManager) matchPlayers(ctx context.Context) {
	for {
		gm.mu.Lock()
		queued1, queued2, ok := gm.queue.GetNextPair()
		if !ok {
			gm.mu.Unlock()
			return
		}
		player1, player2 := queued1.Player, queued2.Player

		gameID := uuid.New().String()
		game := model.NewGame(gameID, gm.log)
		p1Color, err1 := game.AddPlayer(player1.ID)
		p2Color, err2 := game.AddPlayer(player2.ID)
		if err := errors.Join(err1, err2); err != nil {
			gm.mu.Unlock()
			gm.log.Error().Err(err).Str("white", player1.ID).Str("black", player2.ID).Msg("seat matched players")
			continue
		}
		gm.games[gameID] = game
		gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
		gm.mu.Unlock()

		gm.persist(ctx, game)
		gm.log.Info().
			Str("game_id", gameID).
			Str("white", player1.ID).
			Str("black", player2.ID).
			Dur("waited", time.Since(queued1.JoinedAt)).
			Msg("match found")
	}
}

// notifyMatch hands the event to a waiting channel or parks it until the
// player asks. gm.mu must be held.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	if ch, ok := gm.matchingChannels[playerID]; ok {
		select {
		case ch <- event:
			delete(gm.matchingChannels, playerID)
			return
		default:
		}
	}
	gm.pendingMatches[playerID] = event
}

// RegisterMatchmakingChannel returns a channel that receives playerID's match.
// A previous channel for the same player is closed. ErrNotQueued is returned
// when the player is neither queued nor holding an undelivered match.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string) (<-chan model.MatchFoundEvent, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}

	ch := make(chan model.MatchFoundEvent, 1)
	if event, ok := gm.pendingMatches[playerID]; ok {
		delete(gm.pendingMatches, playerID)
		ch <- event
		return ch, nil
	}
	if !gm.queue.Contains(playerID) {
		return nil, ErrNotQueued
	}
	gm.matchingChannels[playerID] = ch
	return ch, nil
}

// UnregisterMatchmakingChannel forgets ch if it is still the registered one.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch <-chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && (<-chan model.MatchFoundEvent)(current) == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	gm.log.Debug().Str("player_id", playerID).Int("queue_size", gm.queue.Size()).Msg("joined matchmaking")
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) CreateGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, ErrGameExists
	}
	game := model.NewGame(gameID, gm.log)
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.persist(ctx, game)
	return game, nil
}

// GetGame looks the game up in memory, falling back to the store.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}

	snap, err := gm.store.Load(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	restored, err := model.RestoreGame(snap, gm.log)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	gm.games[gameID] = restored
	gm.log.Info().Str("game_id", gameID).Int("moves", len(snap.Moves)).Msg("game restored from store")
	return restored, nil
}

func (gm *GameManager) AddPlayerToGame(ctx context.Context, gameID string, playerID string) (chess.Color, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(ctx, game)
	return color, nil
}

func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) ValidMoves(ctx context.Context, gameID string, square string) ([]chess.Move, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.ValidMoves(square)
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID string, playerID string, move model.WSMove) (chess.Ply, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return chess.Ply{}, err
	}
	ply, err := game.MakeMove(playerID, move)
	if err != nil {
		return chess.Ply{}, err
	}
	gm.persist(ctx, game)
	return ply, nil
}

func (gm *GameManager) Resign(ctx context.Context, gameID string, playerID string) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.persist(ctx, game)
	return nil
}

func (gm *GameManager) RegisterConnection(ctx context.Context, gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// DeleteGame forgets a finished game, in memory and in the store. Only a
// seated player may delete it.
func (gm *GameManager) DeleteGame(ctx context.Context, gameID string, playerID string) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if !game.IsPlayerInGame(playerID) {
		return model.ErrNotInGame
	}
	if !game.GetState().Status.IsOver() {
		return ErrGameActive
	}

	gm.mu.Lock()
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if err := gm.store.Delete(ctx, gameID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	gm.log.Info().Str("game_id", gameID).Str("player_id", playerID).Msg("game deleted")
	return nil
}

// persist snapshots the game. The in-memory game stays authoritative, so a
// failed write is logged rather than returned.
func (gm *GameManager) persist(ctx context.Context, game *model.Game) {
	if err := game.Persist(ctx, gm.store); err != nil {
		gm.log.Error().Err(err).Str("game_id", game.ID).Msg("persist game snapshot")
	}
}
