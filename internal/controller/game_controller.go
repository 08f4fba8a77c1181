package controller

import (
	"errors"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	FEN string `json:"fen"`
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	gameID, err := gc.gameService.CreateGame(req.FEN)
	if err != nil {
		return writeError(c, err)
	}
	log.Infow("game created", "game", gameID, "player", playerID(c))
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	color, err := gc.gameService.JoinGame(gameID, playerID(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color.Name(),
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(gameState)
}

// squareQuery reads the square query parameter, e.g. ?square=e2.
func squareQuery(c *fiber.Ctx) (chess.Square, error) {
	name := c.Query("square")
	if name == "" {
		return chess.Square{}, errors.New("square query parameter is required")
	}
	return chess.ParseSquare(name)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	sq, err := squareQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), sq)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(model.LegalMovesEvent{Square: sq, Moves: moves})
}

func (gc *GameController) AvailableMoves(c *fiber.Ctx) error {
	sq, err := squareQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	moves, err := gc.gameService.AvailableMoves(c.Params("gameId"), sq)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(model.LegalMovesEvent{Square: sq, Moves: moves})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move",
		})
	}
	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, playerID(c), move); err != nil {
		return writeError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var req model.PromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid promotion",
		})
	}
	if err := gc.gameService.Promote(c.Params("gameId"), playerID(c), req.Piece); err != nil {
		return writeError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) CancelPromotion(c *fiber.Ctx) error {
	if err := gc.gameService.CancelPromotion(c.Params("gameId"), playerID(c)); err != nil {
		return writeError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
