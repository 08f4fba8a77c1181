package chess

type offset struct {
	dRow, dCol int
}

var (
	rookDirs    = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs  = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs   = append(append([]offset{}, rookDirs...), bishopDirs...)
	knightJumps = []offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingSteps   = queenDirs
)

// AvailableMoves returns the pseudo-legal destinations of the piece on from:
// every square it could reach by its movement shape, ignoring whether its own
// king would be left in check. Castling is not included. An empty or
// out-of-bounds square yields nil.
func AvailableMoves(pos *Position, from Square) []Square {
	pc, ok := pos.PieceAt(from)
	if !ok {
		return nil
	}
	switch pc.Kind {
	case Pawn:
		return pawnDestinations(pos, from, pc.Color)
	case Knight:
		return stepDestinations(pos, from, pc.Color, knightJumps)
	case King:
		return stepDestinations(pos, from, pc.Color, kingSteps)
	case Bishop:
		return rayDestinations(pos, from, pc.Color, bishopDirs)
	case Rook:
		return rayDestinations(pos, from, pc.Color, rookDirs)
	case Queen:
		return rayDestinations(pos, from, pc.Color, queenDirs)
	}
	return nil
}

func pawnDestinations(pos *Position, from Square, c Color) []Square {
	var out []Square
	dir := c.forward()

	one := from.offset(dir, 0)
	if one.InBounds() && pos.isEmpty(one) {
		out = append(out, one)
		two := from.offset(2*dir, 0)
		if from.Row == c.pawnRow() && two.InBounds() && pos.isEmpty(two) {
			out = append(out, two)
		}
	}
	// diagonals are capture-only
	for _, dCol := range []int{-1, 1} {
		target := from.offset(dir, dCol)
		if !target.InBounds() {
			continue
		}
		if occ := pos.at(target); !occ.IsEmpty() && occ.Color != c {
			out = append(out, target)
		}
	}
	return out
}

func stepDestinations(pos *Position, from Square, c Color, steps []offset) []Square {
	var out []Square
	for _, d := range steps {
		target := from.offset(d.dRow, d.dCol)
		if !target.InBounds() {
			continue
		}
		if occ := pos.at(target); occ.IsEmpty() || occ.Color != c {
			out = append(out, target)
		}
	}
	return out
}

func rayDestinations(pos *Position, from Square, c Color, dirs []offset) []Square {
	var out []Square
	for _, d := range dirs {
		target := from.offset(d.dRow, d.dCol)
		for target.InBounds() {
			occ := pos.at(target)
			if occ.IsEmpty() {
				out = append(out, target)
				target = target.offset(d.dRow, d.dCol)
				continue
			}
			if occ.Color != c {
				out = append(out, target)
			}
			break
		}
	}
	return out
}
