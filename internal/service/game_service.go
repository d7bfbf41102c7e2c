package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GameService struct {
	gameManager *GameManager
	log         zerolog.Logger
}

func NewGameService(gameManager *GameManager, log zerolog.Logger) *GameService {
	return &GameService{
		gameManager: gameManager,
		log:         log,
	}
}

func (gs *GameService) CreateGame(ctx context.Context) (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(ctx, gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	gs.log.Info().Str("game_id", gameID).Msg("game created")
	return gameID, nil
}

func (gs *GameService) JoinGame(ctx context.Context, gameID string, playerID string) (chess.Color, error) {
	return gs.gameManager.AddPlayerToGame(ctx, gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

// WaitForMatch blocks until playerID is matched or ctx ends. A player who
// stops waiting stays queued and can collect the match on a later call.
func (gs *GameService) WaitForMatch(ctx context.Context, playerID string) (model.MatchFoundEvent, error) {
	ch, err := gs.gameManager.RegisterMatchmakingChannel(playerID)
	if err != nil {
		return model.MatchFoundEvent{}, err
	}
	defer gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)

	select {
	case event, ok := <-ch:
		if !ok {
			return model.MatchFoundEvent{}, fmt.Errorf("matchmaking wait superseded for %s", playerID)
		}
		return event, nil
	case <-ctx.Done():
		return model.MatchFoundEvent{}, ctx.Err()
	}
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) ValidMoves(ctx context.Context, gameID string, square string) ([]chess.Move, error) {
	return gs.gameManager.ValidMoves(ctx, gameID, square)
}

func (gs *GameService) HandleMove(ctx context.Context, gameID string, playerID string, move model.WSMove) (chess.Ply, error) {
	return gs.gameManager.MakeMove(ctx, gameID, playerID, move)
}

func (gs *GameService) Resign(ctx context.Context, gameID string, playerID string) error {
	return gs.gameManager.Resign(ctx, gameID, playerID)
}

func (gs *GameService) DeleteGame(ctx context.Context, gameID string, playerID string) error {
	return gs.gameManager.DeleteGame(ctx, gameID, playerID)
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

// Send delivers msg to playerID's connection on gameID, if one is open.
func (gs *GameService) Send(ctx context.Context, gameID string, playerID string, msg ws.Message) error {
	game, err := gs.gameManager.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return game.Send(playerID, msg)
}
