package chess

import "fmt"

func illegal(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrIllegalMove}, args...)...)
}

// ValidateMove runs every legality gate for m with sideToMove to play. It
// returns nil for a legal move, an error wrapping ErrIllegalMove for a move
// the rules reject, and ErrOutOfBounds, ErrEmptySquare, ErrNotYourTurn or
// ErrKingNotFound for bad input. The position is never modified.
func ValidateMove(pos *Position, rights CastlingRights, m Move, sideToMove Color) error {
	if err := checkBounds(m.From, m.To); err != nil {
		return err
	}
	pc, ok := pos.PieceAt(m.From)
	if !ok {
		return fmt.Errorf("%w: %v", ErrEmptySquare, m.From)
	}
	if pc.Color != sideToMove {
		return ErrNotYourTurn
	}
	if m.From == m.To {
		return illegal("piece must leave %v", m.From)
	}
	if target, ok := pos.PieceAt(m.To); ok {
		if target.Color == pc.Color {
			return illegal("cannot capture own piece on %v", m.To)
		}
		if target.Kind == King {
			return illegal("cannot capture the king on %v", m.To)
		}
	}
	if m.Promotion != NoKind {
		if pc.Kind != Pawn || m.To.Row != pc.Color.promotionRow() {
			return fmt.Errorf("%w: %s is not a promoting move", ErrInvalidPromotion, m)
		}
		if !isPromotionKind(m.Promotion) {
			return fmt.Errorf("%w: %q", ErrInvalidPromotion, m.Promotion)
		}
	}

	if isCastle(pc, m) {
		return validateCastle(pos, rights, m, pc)
	}
	if !shapeValid(pos, pc, m.From, m.To) {
		return illegal("%s cannot move %v to %v", pc, m.From, m.To)
	}

	// Legality is decided on the resulting position: this covers both
	// escaping an existing check and not walking into one.
	next := pos.Clone()
	next.grid[m.From.Row][m.From.Col] = Piece{}
	next.grid[m.To.Row][m.To.Col] = pc
	inCheck, err := IsInCheck(next, pc.Color)
	if err != nil {
		return err
	}
	if inCheck {
		return illegal("%s would leave the king in check", m)
	}
	return nil
}

func IsLegalMove(pos *Position, rights CastlingRights, m Move, sideToMove Color) bool {
	return ValidateMove(pos, rights, m, sideToMove) == nil
}

// LegalMoves returns the fully filtered destinations of the piece on from,
// castling included. It is empty when the square does not hold a piece of
// sideToMove.
func LegalMoves(pos *Position, rights CastlingRights, from Square, sideToMove Color) []Square {
	pc, ok := pos.PieceAt(from)
	if !ok || pc.Color != sideToMove {
		return nil
	}
	candidates := AvailableMoves(pos, from)
	if pc.Kind == King {
		candidates = append(candidates, castleCandidates(pos, rights, from, pc.Color)...)
	}
	legal := make([]Square, 0, len(candidates))
	for _, to := range candidates {
		if ValidateMove(pos, rights, Move{From: from, To: to}, sideToMove) == nil {
			legal = append(legal, to)
		}
	}
	return legal
}

// AllLegalMoves lists every legal move of side. A pawn reaching its last rank
// appears once, without a promotion kind.
func AllLegalMoves(pos *Position, rights CastlingRights, side Color) []Move {
	var moves []Move
	pos.pieces(side, func(from Square, pc Piece) {
		for _, to := range LegalMoves(pos, rights, from, side) {
			m := Move{From: from, To: to}
			if isCastle(pc, m) {
				m.Flag = Castle
			}
			moves = append(moves, m)
		}
	})
	return moves
}

func hasLegalMove(pos *Position, rights CastlingRights, side Color) bool {
	found := false
	pos.pieces(side, func(from Square, _ Piece) {
		if !found && len(LegalMoves(pos, rights, from, side)) > 0 {
			found = true
		}
	})
	return found
}

// shapeValid checks the movement rule of pc's kind for a non-castling move.
func shapeValid(pos *Position, pc Piece, from, to Square) bool {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	switch pc.Kind {
	case Pawn:
		return pawnShapeValid(pos, pc.Color, from, to)
	case Knight:
		return (abs(dRow) == 2 && abs(dCol) == 1) || (abs(dRow) == 1 && abs(dCol) == 2)
	case Bishop:
		return abs(dRow) == abs(dCol) && pathClear(pos, from, to)
	case Rook:
		return (dRow == 0 || dCol == 0) && pathClear(pos, from, to)
	case Queen:
		return (dRow == 0 || dCol == 0 || abs(dRow) == abs(dCol)) && pathClear(pos, from, to)
	case King:
		return abs(dRow) <= 1 && abs(dCol) <= 1
	}
	return false
}

func pawnShapeValid(pos *Position, c Color, from, to Square) bool {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	dir := c.forward()
	target, occupied := pos.PieceAt(to)
	switch {
	case dCol == 0 && dRow == dir:
		return !occupied
	case dCol == 0 && dRow == 2*dir:
		return from.Row == c.pawnRow() && !occupied && pos.isEmpty(from.offset(dir, 0))
	case abs(dCol) == 1 && dRow == dir:
		return occupied && target.Color != c
	}
	return false
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a rank, file or diagonal.
func pathClear(pos *Position, from, to Square) bool {
	dRow, dCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for sq := from.offset(dRow, dCol); sq != to; sq = sq.offset(dRow, dCol) {
		if !pos.isEmpty(sq) {
			return false
		}
	}
	return true
}
