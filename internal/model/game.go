package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

var (
	ErrGameFull         = errors.New("game is full")
	ErrNotInGame        = errors.New("player is not seated in this game")
	ErrNotAuthorized    = errors.New("not authorized to join this game")
	ErrAlreadyConnected = errors.New("connection already exists")
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	// a websocket allows one writer at a time
	writeMu sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

func (gc *GameConnections) write(conn Conn, msg ws.Message) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// The Game struct focuses on a single game's state and its observers
type Game struct {
	ID          string
	mu          sync.Mutex
	state       *chess.GameState
	whiteID     string
	blackID     string
	createdAt   time.Time
	connections *GameConnections // Connections just for this game
	saveMu      sync.Mutex
}

func NewGame(id string) *Game {
	return newGame(id, chess.NewGame())
}

// NewGameFromFEN starts a game from a set-up position.
func NewGameFromFEN(id, fen string) (*Game, error) {
	state, err := chess.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(id, state), nil
}

// RestoreGame rebuilds a game from its stored record. Connections are not
// part of the record; clients reconnect.
func RestoreGame(rec storage.GameRecord) (*Game, error) {
	if rec.State == nil {
		return nil, fmt.Errorf("restore game %s: record has no state", rec.ID)
	}
	g := newGame(rec.ID, rec.State.Clone())
	g.whiteID = rec.WhiteID
	g.blackID = rec.BlackID
	g.createdAt = rec.CreatedAt
	return g, nil
}

func newGame(id string, state *chess.GameState) *Game {
	return &Game{
		ID:          id,
		state:       state,
		createdAt:   time.Now().UTC(),
		connections: NewGameConnections(),
	}
}

// Record snapshots the game for storage.
func (g *Game) Record() storage.GameRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	return storage.GameRecord{
		ID:        g.ID,
		WhiteID:   g.whiteID,
		BlackID:   g.blackID,
		State:     g.state.Clone(),
		CreatedAt: g.createdAt,
	}
}

// Save snapshots the game and hands the record to save. Saves of one game
// run one at a time, so a record is never written after a newer one.
func (g *Game) Save(save func(storage.GameRecord) error) error {
	g.saveMu.Lock()
	defer g.saveMu.Unlock()
	return save(g.Record())
}

// AddPlayer seats playerID on the first free side. Joining again returns the
// seat the player already has.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	if g.whiteID == "" {
		g.whiteID = playerID
		log.Infow("player seated", "game", g.ID, "player", playerID, "color", "white")
		return chess.White, nil
	}
	if g.blackID == "" {
		g.blackID = playerID
		log.Infow("player seated", "game", g.ID, "player", playerID, "color", "black")
		return chess.Black, nil
	}
	return chess.White, ErrGameFull
}

func (g *Game) ClientState() ClientState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return newClientState(g.ID, g.state, g.whiteID, g.blackID)
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) colorOf(playerID string) (chess.Color, bool) {
	switch {
	case playerID == "":
		return chess.White, false
	case g.whiteID == playerID:
		return chess.White, true
	case g.blackID == playerID:
		return chess.Black, true
	}
	return chess.White, false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.whiteID == "" || g.blackID == ""
}

// seatToMove returns the color playerID plays, failing unless it is that
// color's turn.
func (g *Game) seatToMove(playerID string) (chess.Color, error) {
	c, ok := g.colorOf(playerID)
	if !ok {
		return c, ErrNotInGame
	}
	if g.state.PendingPromotion != nil && g.state.PendingPromotion.Color != c {
		return c, chess.ErrNotYourTurn
	}
	if g.state.Turn != c {
		return c, chess.ErrNotYourTurn
	}
	return c, nil
}

// MakeMove plays move for playerID and broadcasts the new state.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	mv, err := move.toMove()
	if err != nil {
		return err
	}

	g.mu.Lock()
	if _, err := g.seatToMove(playerID); err != nil {
		g.mu.Unlock()
		return err
	}
	if err := g.state.Move(mv); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("move %s: %w", move, err)
	}
	status := g.state.Status
	g.mu.Unlock()

	log.Debugf("game %s: %s played %s", g.ID, playerID, move)
	if status.IsOver() {
		log.Infow("game over", "game", g.ID, "result", status.String())
	}
	g.Broadcast()
	return nil
}

func (g *Game) Promote(playerID, piece string) error {
	kind, err := chess.ParsePromotionKind(piece)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if _, err := g.seatToMove(playerID); err != nil {
		g.mu.Unlock()
		return err
	}
	if err := g.state.Promote(kind); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	g.Broadcast()
	return nil
}

func (g *Game) CancelPromotion(playerID string) error {
	g.mu.Lock()
	if _, err := g.seatToMove(playerID); err != nil {
		g.mu.Unlock()
		return err
	}
	if err := g.state.CancelPromotion(); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	g.Broadcast()
	return nil
}

// LegalMoves lists where the piece on sq may go now. The slice is never nil.
func (g *Game) LegalMoves(sq chess.Square) []chess.Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := g.state.LegalMoves(sq)
	if moves == nil {
		moves = []chess.Square{}
	}
	return moves
}

// AvailableMoves lists the pseudo-legal destinations of the piece on sq,
// ignoring whose turn it is and king safety. Clients use it for hints.
func (g *Game) AvailableMoves(sq chess.Square) []chess.Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := chess.AvailableMoves(&g.state.Position, sq)
	if moves == nil {
		moves = []chess.Square{}
	}
	return moves
}

// RegisterConnection attaches conn for playerID and sends the current state.
// Seated players may connect, and anyone may while a seat is still open.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.colorOf(playerID)
	isAuthorized := seated || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// keep the healthy connection, turn the new one away
		g.connections.mu.Unlock()
		g.connections.writeMu.Lock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrAlreadyConnected.Error()),
		)
		g.connections.writeMu.Unlock()
		conn.Close()
		return ErrAlreadyConnected
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection for %s", g.ID, playerID)

	msg, err := g.stateMessage()
	if err != nil {
		return err
	}
	return g.connections.write(conn, msg)
}

// UnregisterConnection detaches conn if it is still the one registered for
// playerID.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Debugf("game %s: unregistered connection for %s", g.ID, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

// Send writes msg to one connection of this game.
func (g *Game) Send(conn Conn, msg ws.Message) error {
	return g.connections.write(conn, msg)
}

func (g *Game) stateMessage() (ws.Message, error) {
	state := g.ClientState()
	payload, err := json.Marshal(state)
	if err != nil {
		return ws.Message{}, fmt.Errorf("marshal state of game %s: %w", g.ID, err)
	}
	return ws.Message{Type: ws.MessageTypeGameState, Payload: payload}, nil
}

// Broadcast sends the current state to every connection. Connections that
// fail to write are dropped.
func (g *Game) Broadcast() {
	msg, err := g.stateMessage()
	if err != nil {
		log.Errorf("broadcast: %v", err)
		return
	}

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := g.connections.write(conn, msg); err != nil {
			log.Warnf("game %s: failed to send state to %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
