package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// RequireGame answers 404 before the upgrade when the game does not exist.
func (wsc *WebSocketController) RequireGame(c *fiber.Ctx) error {
	if !wsc.gameService.GameExists(c.Params("gameId")) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": service.ErrGameNotFound.Error(),
		})
	}
	return c.Next()
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("wsPlayerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: refused connection for %s: %v", gameID, playerID, err)
		refuse(c, err)
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("game %s: read from %s: %v", gameID, playerID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(gameID, c, ws.NewError(fmt.Errorf("malformed message: %w", err)))
			continue
		}

		reply, err := wsc.handleMessage(gameID, playerID, msg)
		if err != nil {
			log.Debugf("game %s: %s from %s rejected: %v", gameID, msg.Type, playerID, err)
			errMsg := ws.NewError(err)
			reply = &errMsg
		}
		if reply != nil {
			wsc.reply(gameID, c, *reply)
		}
	}
}

// refuse reports a failed registration and closes conn. A duplicate
// connection has already been closed by the game.
func refuse(conn model.Conn, err error) {
	if errors.Is(err, model.ErrAlreadyConnected) {
		return
	}
	conn.WriteJSON(ws.NewError(err))
	conn.Close()
}

// handleMessage applies one client message. State changes reach the client
// through the game broadcast, so only queries return a reply.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) (*ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, fmt.Errorf("invalid move payload: %w", err)
		}
		return nil, wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypePromote:
		var req model.PromotionRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return nil, fmt.Errorf("invalid promotion payload: %w", err)
		}
		return nil, wsc.gameService.Promote(gameID, playerID, req.Piece)

	case ws.MessageTypeCancelPromotion:
		return nil, wsc.gameService.CancelPromotion(gameID, playerID)

	case ws.MessageTypeLegalMoves:
		var req model.SquareRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return nil, fmt.Errorf("invalid square payload: %w", err)
		}
		moves, err := wsc.gameService.LegalMoves(gameID, req.Square)
		if err != nil {
			return nil, err
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, model.LegalMovesEvent{Square: req.Square, Moves: moves})
		if err != nil {
			return nil, err
		}
		return &reply, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) reply(gameID string, c model.Conn, msg ws.Message) {
	if err := wsc.gameService.Send(gameID, c, msg); err != nil {
		log.Warnf("game %s: reply failed: %v", gameID, err)
	}
}

// HandleMatchmaking queues the player and waits for one match, which is
// delivered as a matchFound message before the socket closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("wsPlayerID").(string)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		c.WriteJSON(ws.NewError(err))
		return
	}

	// the read loop only watches for the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case payload, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(payload)}); err != nil {
			log.Warnf("matchmaking: notify %s: %v", playerID, err)
		}
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match found"))
	case <-gone:
		log.Debugf("matchmaking: %s left the queue", playerID)
	}
}
