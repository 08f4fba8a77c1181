package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store, err := storage.Open("", true)
	require.NoError(t, err)
	gm := service.NewGameManager(store, time.Hour)
	t.Cleanup(func() {
		gm.Close()
		store.Close()
	})

	app := fiber.New()
	RegisterRoutes(app, service.NewGameService(gm), []string{"http://localhost:5173"})
	return app
}

// call sends a request as player and decodes the JSON response into out when
// out is not nil.
func call(t *testing.T, app *fiber.App, method, path, player, body string, out interface{}) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	var created struct {
		GameID string `json:"game_id"`
	}
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/create", "alice", body, &created))
	require.NotEmpty(t, created.GameID)
	return created.GameID
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	var body map[string]string
	assert.Equal(t, fiber.StatusOK, call(t, app, "GET", "/healthz", "", "", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPIRequiresPlayerID(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "POST", "/api/game/create", "", "", nil))
}

func TestGameFlowOverREST(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, "")

	var joined map[string]string
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/join/"+id, "alice", "", &joined))
	assert.Equal(t, "white", joined["color"])
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/join/"+id, "bob", "", &joined))
	assert.Equal(t, "black", joined["color"])
	assert.Equal(t, fiber.StatusConflict, call(t, app, "POST", "/api/game/join/"+id, "carol", "", nil))

	var moves model.LegalMovesEvent
	require.Equal(t, fiber.StatusOK, call(t, app, "GET", "/api/game/"+id+"/moves?square=g1", "alice", "", &moves))
	assert.Len(t, moves.Moves, 2)

	move := `{"from":{"row":6,"col":4},"to":{"row":4,"col":4}}`
	assert.Equal(t, fiber.StatusConflict, call(t, app, "POST", "/api/game/"+id+"/move", "bob", move, nil))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "POST", "/api/game/"+id+"/move", "carol", move, nil))

	var state model.ClientState
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/"+id+"/move", "alice", move, &state))
	assert.Equal(t, "black", state.ToMove)
	assert.Equal(t, "b", state.Turn)
	require.NotNil(t, state.LastMove)
	assert.Equal(t, "wp", state.LastMove.Piece.Code())

	illegal := `{"from":{"row":1,"col":4},"to":{"row":4,"col":4}}`
	var errBody map[string]string
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/"+id+"/move", "bob", illegal, &errBody))
	assert.Contains(t, errBody["error"], "illegal move")

	require.Equal(t, fiber.StatusOK, call(t, app, "GET", "/api/game/"+id, "carol", "", &state))
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", state.FEN)
}

func TestMovesQueries(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, `{"fen":"4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1"}`)

	var legal, available model.LegalMovesEvent
	require.Equal(t, fiber.StatusOK, call(t, app, "GET", "/api/game/"+id+"/moves?square=e2", "alice", "", &legal))
	assert.NotNil(t, legal.Moves)
	assert.Empty(t, legal.Moves, "bishop is pinned")
	require.Equal(t, fiber.StatusOK, call(t, app, "GET", "/api/game/"+id+"/available?square=e2", "alice", "", &available))
	assert.NotEmpty(t, available.Moves)

	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "GET", "/api/game/"+id+"/moves", "alice", "", nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "GET", "/api/game/"+id+"/moves?square=z9", "alice", "", nil))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, "GET", "/api/game/nope/moves?square=e2", "alice", "", nil))
}

func TestPromotionOverREST(t *testing.T) {
	app := newTestApp(t)
	id := createGame(t, app, `{"fen":"4k3/P7/8/8/8/8/8/4K3 w - - 0 1"}`)
	call(t, app, "POST", "/api/game/join/"+id, "alice", "", nil)
	call(t, app, "POST", "/api/game/join/"+id, "bob", "", nil)

	push := `{"from":{"row":1,"col":0},"to":{"row":0,"col":0}}`
	var state model.ClientState
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/"+id+"/move", "alice", push, &state))
	require.NotNil(t, state.PendingPromotion)

	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/"+id+"/promote", "alice", `{"piece":"king"}`, nil))
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/"+id+"/cancel-promotion", "alice", "", &state))
	assert.Nil(t, state.PendingPromotion)
	assert.Equal(t, fiber.StatusConflict, call(t, app, "POST", "/api/game/"+id+"/cancel-promotion", "alice", "", nil))

	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/"+id+"/move", "alice", push, &state))
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/"+id+"/promote", "alice", `{"piece":"queen"}`, &state))
	assert.Equal(t, "black", state.ToMove)
	assert.True(t, state.BlackInCheck)
}

func TestCreateGameRejectsBadFEN(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/create", "alice", `{"fen":"nonsense"}`, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/create", "alice", `{"fen":"4k3/4R3/8/8/8/8/8/4K3 w - - 0 1"}`, nil),
		"side not to move in check")
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/create", "alice", `{"fen":"8/8/8/8/8/8/8/4K3 w - - 0 1"}`, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, "POST", "/api/game/create", "alice", `{"fen":`, nil))
}

func TestUnknownGameIs404(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, fiber.StatusNotFound, call(t, app, "GET", "/api/game/missing", "alice", "", nil))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, "POST", "/api/game/join/missing", "alice", "", nil))
}

func TestMatchmakingJoin(t *testing.T) {
	app := newTestApp(t)
	var body map[string]string
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", "/api/game/matchmaking/join", "alice", "", &body))
	assert.Equal(t, "queued", body["status"])
	assert.Equal(t, fiber.StatusConflict, call(t, app, "POST", "/api/game/matchmaking/join", "alice", "", nil))
}

func TestWebSocketRoutesNeedUpgrade(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, fiber.StatusUpgradeRequired, call(t, app, "GET", "/ws/matchmaking?playerId=alice", "", "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/ws/matchmaking", "", "", nil))
}
