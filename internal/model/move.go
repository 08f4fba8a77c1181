package model

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

// WSMove is a move as clients send it. Promotion is optional; when it names
// a piece the promotion resolves in the same request.
type WSMove struct {
	From      chess.Square `json:"from"`
	To        chess.Square `json:"to"`
	Promotion string       `json:"promotion,omitempty"`
}

func (m WSMove) toMove() (chess.Move, error) {
	mv := chess.Move{From: m.From, To: m.To}
	if m.Promotion != "" {
		kind, err := chess.ParsePromotionKind(m.Promotion)
		if err != nil {
			return chess.Move{}, err
		}
		mv.Promotion = kind
	}
	return mv, nil
}

func (m WSMove) String() string {
	if m.Promotion != "" {
		return fmt.Sprintf("%s-%s=%s", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

type PromotionRequest struct {
	Piece string `json:"piece"`
}

type SquareRequest struct {
	Square chess.Square `json:"square"`
}

type LegalMovesEvent struct {
	Square chess.Square   `json:"square"`
	Moves  []chess.Square `json:"moves"`
}

type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  string `json:"color"`
}
