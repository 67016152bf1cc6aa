package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hailam/chessbot/internal/board"
	"github.com/hailam/chessbot/internal/game"
	"github.com/hailam/chessbot/internal/storage"
)

// GameController serves the REST side of the game API.
type GameController struct {
	manager *SessionManager
	store   *storage.Storage // nil when games are not persisted
}

// NewGameController creates a controller over the given registry.
func NewGameController(manager *SessionManager, store *storage.Storage) *GameController {
	return &GameController{manager: manager, store: store}
}

// CreateGame starts a session. The bot query parameter picks the bot's
// color: white, black, both or none (default black).
func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	colors, err := parseBotColors(c.Query("bot", "black"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	id := gc.manager.Create(colors...)
	session, err := gc.manager.Get(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(NewGameState(id, session.Snapshot()))
}

// GetGameState returns the current snapshot of a session.
func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	id := c.Params("gameId")
	session, err := gc.manager.Get(id)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(NewGameState(id, session.Snapshot()))
}

// Click forwards a board click to the session.
func (gc *GameController) Click(c *fiber.Ctx) error {
	id := c.Params("gameId")
	session, err := gc.manager.Get(id)
	if err != nil {
		return sessionError(c, err)
	}

	var req ClickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	moved, err := click(session, req)
	if err != nil {
		return clickError(c, err)
	}
	return c.JSON(ClickResponse{Moved: moved, State: NewGameState(id, session.Snapshot())})
}

// NewGame resets a session to the starting position.
func (gc *GameController) NewGame(c *fiber.Ctx) error {
	id := c.Params("gameId")
	session, err := gc.manager.Get(id)
	if err != nil {
		return sessionError(c, err)
	}
	session.NewGame()
	return c.JSON(NewGameState(id, session.Snapshot()))
}

// DeleteGame stops a session and forgets it.
func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.manager.Remove(c.Params("gameId")); err != nil {
		return sessionError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSessions returns the ids of the running sessions.
func (gc *GameController) ListSessions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sessions": gc.manager.IDs(),
	})
}

// ListGames returns finished games, newest first.
func (gc *GameController) ListGames(c *fiber.Ctx) error {
	if gc.store == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "game history is not enabled",
		})
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid limit",
		})
	}

	games, err := gc.store.ListGames(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list games",
		})
	}
	stats, err := gc.store.LoadStats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load stats",
		})
	}
	return c.JSON(fiber.Map{
		"games": games,
		"stats": stats,
	})
}

// GetGame returns one finished game.
func (gc *GameController) GetGame(c *fiber.Ctx) error {
	if gc.store == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "game history is not enabled",
		})
	}
	rec, err := gc.store.GetGame(c.Params("recordId"))
	if err != nil {
		if errors.Is(err, storage.ErrGameNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch game",
		})
	}
	return c.JSON(rec)
}

func click(session *game.Session, req ClickRequest) (bool, error) {
	sq, err := board.ParseSquare(req.Square)
	if err != nil {
		return false, err
	}
	return session.ProcessClick(sq)
}

func parseBotColors(s string) ([]board.Color, error) {
	switch s {
	case "white":
		return []board.Color{board.White}, nil
	case "black":
		return []board.Color{board.Black}, nil
	case "both":
		return []board.Color{board.White, board.Black}, nil
	case "none":
		return nil, nil
	default:
		return nil, errors.New("bot must be white, black, both or none")
	}
}

func sessionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func clickError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if errors.Is(err, game.ErrGameOver) || errors.Is(err, game.ErrBotThinking) {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
