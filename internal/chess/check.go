package chess

import (
	"fmt"

	"golang.org/x/exp/slices"
)

func FindKing(pos *Position, c Color) (Square, error) {
	king := Piece{Color: c, Kind: King}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pos.grid[row][col] == king {
				return Square{Row: row, Col: col}, nil
			}
		}
	}
	return Square{}, fmt.Errorf("%w: %s", ErrKingNotFound, c.Name())
}

// IsInCheck reports whether any piece of the opposing color has c's king
// square among its pseudo-legal destinations.
func IsInCheck(pos *Position, c Color) (bool, error) {
	kingSq, err := FindKing(pos, c)
	if err != nil {
		return false, err
	}
	return IsSquareAttacked(pos, kingSq, c.Opposite()), nil
}

// IsSquareAttacked reports whether a piece of attacker could capture on
// target. Pawns attack their two forward diagonals only.
func IsSquareAttacked(pos *Position, target Square, attacker Color) bool {
	attacked := false
	pos.pieces(attacker, func(sq Square, pc Piece) {
		if attacked {
			return
		}
		if pc.Kind == Pawn {
			attacked = target.Row == sq.Row+attacker.forward() && abs(target.Col-sq.Col) == 1
			return
		}
		attacked = slices.Contains(AvailableMoves(pos, sq), target)
	})
	return attacked
}
