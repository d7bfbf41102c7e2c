package controller

import (
	"context"
	"errors"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	defaultMatchWait = 30 * time.Second
	maxMatchWait     = 2 * time.Minute
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame(c.UserContext())
	if err != nil {
		return gc.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(c.UserContext(), gameID, playerID)
	if err != nil {
		return gc.writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return gc.writeError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ValidMoves(c *fiber.Ctx) error {
	square := c.Params("square")
	moves, err := gc.gameService.ValidMoves(c.UserContext(), c.Params("gameId"), square)
	if err != nil {
		return gc.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"square": square,
		"moves":  moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	playerID := c.Locals("playerID").(string)

	ply, err := gc.gameService.HandleMove(c.UserContext(), c.Params("gameId"), playerID, move)
	if err != nil {
		return gc.writeError(c, err)
	}
	return c.JSON(ply)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)
	if err := gc.gameService.Resign(c.UserContext(), c.Params("gameId"), playerID); err != nil {
		return gc.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game resigned",
	})
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)
	if err := gc.gameService.DeleteGame(c.UserContext(), c.Params("gameId"), playerID); err != nil {
		return gc.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return gc.writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)
	return c.JSON(fiber.Map{
		"removed": gc.gameService.LeaveMatchmaking(playerID),
	})
}

// WaitForMatch long-polls until the caller is matched. The wait is bounded by
// the timeout query parameter; on expiry the caller is still queued.
func (gc *GameController) WaitForMatch(c *fiber.Ctx) error {
	wait := defaultMatchWait
	if raw := c.Query("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid timeout",
			})
		}
		wait = min(d, maxMatchWait)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), wait)
	defer cancel()

	playerID := c.Locals("playerID").(string)
	event, err := gc.gameService.WaitForMatch(ctx, playerID)
	if errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "waiting",
		})
	}
	if err != nil {
		return gc.writeError(c, err)
	}
	return c.JSON(event)
}

func (gc *GameController) writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		gc.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, chess.ErrNotYourTurn),
		errors.Is(err, chess.ErrGameOver),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrWaitingForOpponent),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, service.ErrNotQueued),
		errors.Is(err, service.ErrGameActive),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, chess.ErrIllegalMove),
		errors.Is(err, chess.ErrInvalidPosition),
		errors.Is(err, chess.ErrInvalidPiece):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
