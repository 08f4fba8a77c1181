// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameStore persists game records. *storage.Store implements it.
type GameStore interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	store            GameStore
	mu               sync.RWMutex

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGameManager starts the matchmaking loop, pairing the queue every
// interval until Close. store may be nil to keep games in memory only.
func NewGameManager(store GameStore, interval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		store:            store,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(interval)

	return gm
}

// Close stops the matchmaking loop and waits for it to exit.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() {
		close(gm.stop)
		<-gm.done
	})
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	defer close(gm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			for gm.matchNextPair() {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game and
// notifies their matchmaking channels. It reports whether a pair was made.
func (gm *GameManager) matchNextPair() bool {
	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Errorf("matchmaking: seat %s: %v", player1.ID, err)
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Errorf("matchmaking: seat %s: %v", player2.ID, err)
		return true
	}

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()
	gm.persist(game)
	log.Infow("match found", "game", gameID, "white", player1.ID, "black", player2.ID)

	sent1 := gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color.Name()})
	sent2 := gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color.Name()})
	if !sent1 || !sent2 {
		// players without a live channel can still join by id
		log.Warnf("matchmaking: not every player of game %s was notified", gameID)
	}
	return true
}

// notifyMatch sends event on playerID's channel, then removes and closes it.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("matchmaking: marshal event: %v", err)
		return false
	}

	sent := false
	select {
	case ch <- string(payload):
		sent = true
	default:
		log.Warnf("matchmaking: channel of %s is full", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
	return sent
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// a newer listener replaces the old one, whose reader sees the close
	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still registered for
// playerID and takes the player out of the queue. The creator of ch keeps
// ownership; it is not closed here.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
		gm.queue.Remove(playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) QueueSize() int {
	return gm.queue.Size()
}

// CreateGame registers a new game. An empty fen starts from the standard
// position.
func (gm *GameManager) CreateGame(gameID, fen string) error {
	game := model.NewGame(gameID)
	if fen != "" {
		var err error
		if game, err = model.NewGameFromFEN(gameID, fen); err != nil {
			return err
		}
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return ErrGameExists
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.persist(game)
	return nil
}

// GetGame returns the live game, restoring it from the store on a miss.
func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.store == nil {
		return nil, ErrGameNotFound
	}

	rec, err := gm.store.LoadGame(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	restored, err := model.RestoreGame(rec)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	// another request may have restored it first
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	gm.games[gameID] = restored
	log.Infof("restored game %s from storage", gameID)
	return restored, nil
}

func (gm *GameManager) persist(game *model.Game) {
	if gm.store == nil {
		return
	}
	if err := game.Save(gm.store.SaveGame); err != nil {
		log.Errorf("persist game %s: %v", game.ID, err)
	}
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (chess.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return chess.White, err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return color, err
	}
	gm.persist(game)
	game.Broadcast()
	return color, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.ClientState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.ClientState{}, err
	}
	return game.ClientState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

func (gm *GameManager) Promote(gameID, playerID, piece string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Promote(playerID, piece); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

func (gm *GameManager) CancelPromotion(gameID, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.CancelPromotion(playerID); err != nil {
		return err
	}
	gm.persist(game)
	return nil
}

func (gm *GameManager) LegalMoves(gameID string, sq chess.Square) ([]chess.Square, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(sq), nil
}

func (gm *GameManager) AvailableMoves(gameID string, sq chess.Square) ([]chess.Square, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.AvailableMoves(sq), nil
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
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

// Send writes msg to conn, serialized with the game's broadcasts.
func (gm *GameManager) Send(gameID string, conn model.Conn, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(conn, msg)
}
