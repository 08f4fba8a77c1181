package model

import "github.com/benbeisheim/chess-backend/internal/chess"

// ClientState is what clients render. It leaves out the promotion revert
// snapshot the engine keeps internally.
type ClientState struct {
	GameID           string                  `json:"gameId"`
	Board            chess.Position          `json:"board"`
	ToMove           string                  `json:"toMove"`
	Turn             string                  `json:"turn"` // "w" or "b", as in piece codes
	CastlingRights   chess.CastlingRights    `json:"castlingRights"`
	PendingPromotion *chess.PendingPromotion `json:"pendingPromotion"`
	GameStatus       chess.GameStatus        `json:"gameStatus"`
	WhiteInCheck     bool                    `json:"whiteInCheck"`
	BlackInCheck     bool                    `json:"blackInCheck"`
	LastMove         *chess.LastMove         `json:"lastMove"`
	FEN              string                  `json:"fen"`
	Players          struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

// newClientState copies everything out of s, so the result stays valid after
// the game lock is released.
func newClientState(gameID string, s *chess.GameState, whiteID, blackID string) ClientState {
	s = s.Clone()
	cs := ClientState{
		GameID:           gameID,
		Board:            s.Position,
		ToMove:           s.Turn.Name(),
		Turn:             s.Turn.String(),
		CastlingRights:   s.CastlingRights,
		PendingPromotion: s.PendingPromotion,
		GameStatus:       s.Status,
		WhiteInCheck:     s.WhiteInCheck,
		BlackInCheck:     s.BlackInCheck,
		LastMove:         s.LastMove,
		FEN:              s.FEN(),
	}
	cs.Players.White = newClientPlayer(whiteID, chess.White)
	cs.Players.Black = newClientPlayer(blackID, chess.Black)
	return cs
}
