package chess

type SideRights struct {
	KingSide  bool `json:"kingSide"`
	QueenSide bool `json:"queenSide"`
}

// CastlingRights only ever lose flags over a game.
type CastlingRights struct {
	White SideRights `json:"w"`
	Black SideRights `json:"b"`
}

func AllCastlingRights() CastlingRights {
	return CastlingRights{
		White: SideRights{KingSide: true, QueenSide: true},
		Black: SideRights{KingSide: true, QueenSide: true},
	}
}

func (r CastlingRights) For(c Color) SideRights {
	if c == White {
		return r.White
	}
	return r.Black
}

func (r *CastlingRights) side(c Color) *SideRights {
	if c == White {
		return &r.White
	}
	return &r.Black
}

// AfterMove returns the rights once m has been applied to pos, where pos is
// the position before the move. A king move clears both flags of its color, a
// rook leaving its corner clears that side, and capturing a rook on its corner
// clears the opponent's side.
func (r CastlingRights) AfterMove(pos *Position, m Move) CastlingRights {
	next := r
	pc, ok := pos.PieceAt(m.From)
	if !ok {
		return next
	}
	switch pc.Kind {
	case King:
		*next.side(pc.Color) = SideRights{}
	case Rook:
		next.clearCorner(pc.Color, m.From)
	}
	if captured, ok := pos.PieceAt(m.To); ok && captured.Kind == Rook {
		next.clearCorner(captured.Color, m.To)
	}
	return next
}

func (r *CastlingRights) clearCorner(c Color, sq Square) {
	if sq.Row != c.homeRow() {
		return
	}
	switch sq.Col {
	case 0:
		r.side(c).QueenSide = false
	case 7:
		r.side(c).KingSide = false
	}
}

func isCastle(pc Piece, m Move) bool {
	if m.Flag == Castle {
		return true
	}
	return pc.Kind == King && m.From.Row == m.To.Row && abs(m.To.Col-m.From.Col) == 2
}

func castleRookSquares(m Move) (from, to Square) {
	row := m.From.Row
	if m.To.Col > m.From.Col {
		return Square{Row: row, Col: 7}, Square{Row: row, Col: 5}
	}
	return Square{Row: row, Col: 0}, Square{Row: row, Col: 3}
}

func castleCandidates(pos *Position, rights CastlingRights, from Square, c Color) []Square {
	home := Square{Row: c.homeRow(), Col: 4}
	if from != home {
		return nil
	}
	var out []Square
	sr := rights.For(c)
	if sr.KingSide {
		out = append(out, Square{Row: home.Row, Col: 6})
	}
	if sr.QueenSide {
		out = append(out, Square{Row: home.Row, Col: 2})
	}
	return out
}

func validateCastle(pos *Position, rights CastlingRights, m Move, king Piece) error {
	home := Square{Row: king.Color.homeRow(), Col: 4}
	if king.Kind != King || m.From != home || m.To.Row != home.Row || (m.To.Col != 2 && m.To.Col != 6) {
		return illegal("%s is not a castling move", m)
	}
	kingSide := m.To.Col == 6
	sr := rights.For(king.Color)
	if (kingSide && !sr.KingSide) || (!kingSide && !sr.QueenSide) {
		return illegal("%s has lost the right to castle that side", king.Color.Name())
	}

	rookSq, _ := castleRookSquares(m)
	if rook, ok := pos.PieceAt(rookSq); !ok || rook != (Piece{Color: king.Color, Kind: Rook}) {
		return illegal("no rook on %v", rookSq)
	}
	step := sign(rookSq.Col - home.Col)
	for col := home.Col + step; col != rookSq.Col; col += step {
		if !pos.isEmpty(Square{Row: home.Row, Col: col}) {
			return illegal("castling path blocked at %v", Square{Row: home.Row, Col: col})
		}
	}

	inCheck, err := IsInCheck(pos, king.Color)
	if err != nil {
		return err
	}
	if inCheck {
		return illegal("cannot castle out of check")
	}
	// every square the king crosses, destination included, must be safe
	for col := home.Col + step; ; col += step {
		sq := Square{Row: home.Row, Col: col}
		next := pos.Clone()
		next.grid[home.Row][home.Col] = Piece{}
		next.grid[sq.Row][sq.Col] = king
		attacked, err := IsInCheck(next, king.Color)
		if err != nil {
			return err
		}
		if attacked {
			return illegal("king would cross attacked square %v", sq)
		}
		if col == m.To.Col {
			break
		}
	}
	return nil
}
