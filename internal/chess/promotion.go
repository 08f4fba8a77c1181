package chess

import (
	"fmt"
	"strings"
)

// PendingPromotion marks a pawn that reached its last rank and is waiting for
// the player's choice of piece.
type PendingPromotion struct {
	Square Square `json:"square"`
	Color  Color  `json:"color"`
}

var promotionNames = map[string]Kind{
	"q": Queen, "queen": Queen,
	"r": Rook, "rook": Rook,
	"b": Bishop, "bishop": Bishop,
	"n": Knight, "knight": Knight,
}

// ParsePromotionKind accepts the piece letter or name of a knight, bishop,
// rook or queen.
func ParsePromotionKind(s string) (Kind, error) {
	if k, ok := promotionNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return NoKind, fmt.Errorf("%w: %q", ErrInvalidPromotion, s)
}

func isPromotionKind(k Kind) bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

func reachesLastRank(pc Piece, to Square) bool {
	return pc.Kind == Pawn && to.Row == pc.Color.promotionRow()
}
