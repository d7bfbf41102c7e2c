package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

type validMovesResponse struct {
	Square string       `json:"square"`
	Moves  []chess.Move `json:"moves"`
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	log := wsc.log.With().Str("game_id", gameID).Str("player_id", playerID).Logger()
	ctx := context.Background()

	if err := wsc.gameService.RegisterConnection(ctx, gameID, playerID, c); err != nil {
		log.Warn().Err(err).Msg("register connection")
		c.WriteJSON(ws.ErrorMessage(err))
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("read")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(ctx, gameID, playerID, ws.ErrorMessage(fmt.Errorf("malformed message: %w", err)))
			continue
		}

		if err := wsc.handleMessage(ctx, gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			wsc.reply(ctx, gameID, playerID, ws.ErrorMessage(err))
		}
	}
}

func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		// The new state reaches every connection through the game's broadcast.
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, move)
		return err

	case ws.MessageTypeValidMoves:
		var req ws.ValidMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("malformed validMoves request: %w", err)
		}
		moves, err := wsc.gameService.ValidMoves(ctx, gameID, req.Square)
		if err != nil {
			return err
		}
		resp, err := ws.NewMessage(ws.MessageTypeValidMoves, validMovesResponse{Square: req.Square, Moves: moves})
		if err != nil {
			return err
		}
		wsc.reply(ctx, gameID, playerID, resp)
		return nil

	case ws.MessageTypeResign:
		return wsc.gameService.Resign(ctx, gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// reply goes through the game so it never interleaves with a broadcast.
func (wsc *WebSocketController) reply(ctx context.Context, gameID, playerID string, msg ws.Message) {
	if err := wsc.gameService.Send(ctx, gameID, playerID, msg); err != nil {
		wsc.log.Debug().Err(err).Str("game_id", gameID).Str("player_id", playerID).Msg("reply")
	}
}
