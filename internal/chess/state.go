package chess

import "fmt"

// LastMove is what clients use to highlight the previous move.
type LastMove struct {
	From  Square `json:"from"`
	To    Square `json:"to"`
	Piece Piece  `json:"piece"`
}

// snapshot is the state restored when a pending promotion is cancelled.
type snapshot struct {
	Position Position       `json:"position"`
	Rights   CastlingRights `json:"castlingRights"`
	LastMove *LastMove      `json:"lastMove"`
}

// GameState is everything needed to continue a game. The engine functions
// take its parts explicitly; GameState only sequences them. It is not safe
// for concurrent use.
type GameState struct {
	Position         Position          `json:"position"`
	Turn             Color             `json:"turn"`
	CastlingRights   CastlingRights    `json:"castlingRights"`
	PendingPromotion *PendingPromotion `json:"pendingPromotion"`
	Status           GameStatus        `json:"gameStatus"`
	WhiteInCheck     bool              `json:"whiteInCheck"`
	BlackInCheck     bool              `json:"blackInCheck"`
	LastMove         *LastMove         `json:"lastMove"`
	Revert           *snapshot         `json:"revert,omitempty"`
}

func NewGame() *GameState {
	return &GameState{
		Position:       InitialPosition(),
		Turn:           White,
		CastlingRights: AllCastlingRights(),
		Status:         GameStatus{Status: Active},
	}
}

func (g *GameState) Clone() *GameState {
	c := *g
	if g.PendingPromotion != nil {
		pp := *g.PendingPromotion
		c.PendingPromotion = &pp
	}
	if g.Status.Winner != nil {
		w := *g.Status.Winner
		c.Status.Winner = &w
	}
	if g.LastMove != nil {
		lm := *g.LastMove
		c.LastMove = &lm
	}
	if g.Revert != nil {
		r := *g.Revert
		if r.LastMove != nil {
			lm := *r.LastMove
			r.LastMove = &lm
		}
		c.Revert = &r
	}
	return &c
}

func (g *GameState) InCheck(c Color) bool {
	if c == White {
		return g.WhiteInCheck
	}
	return g.BlackInCheck
}

// LegalMoves lists the legal destinations of the piece on sq for the side to
// move. Nothing is legal while a promotion is pending or the game is over.
func (g *GameState) LegalMoves(sq Square) []Square {
	if g.PendingPromotion != nil || g.Status.IsOver() {
		return nil
	}
	return LegalMoves(&g.Position, g.CastlingRights, sq, g.Turn)
}

// Move validates and applies m for the side to move. On error the state is
// unchanged. A pawn reaching its last rank leaves the turn with the mover
// until Promote or CancelPromotion, unless m already names the piece.
func (g *GameState) Move(m Move) error {
	if g.Status.IsOver() {
		return ErrGameOver
	}
	if g.PendingPromotion != nil {
		return ErrPromotionPending
	}
	if err := ValidateMove(&g.Position, g.CastlingRights, m, g.Turn); err != nil {
		return err
	}

	next := g.Clone()
	pc := next.Position.at(m.From)
	before := snapshot{Position: next.Position, Rights: next.CastlingRights, LastMove: next.LastMove}
	rights := next.CastlingRights.AfterMove(&next.Position, m)

	applied := m
	applied.Promotion = NoKind
	if err := next.Position.ApplyMove(applied); err != nil {
		return fmt.Errorf("apply %s: %w", m, err)
	}
	next.CastlingRights = rights
	next.LastMove = &LastMove{From: m.From, To: m.To, Piece: pc}

	if reachesLastRank(pc, m.To) {
		next.PendingPromotion = &PendingPromotion{Square: m.To, Color: pc.Color}
		next.Revert = &before
		if m.Promotion != NoKind {
			if err := next.promote(m.Promotion); err != nil {
				return err
			}
		}
	} else if err := next.advance(); err != nil {
		return err
	}
	*g = *next
	return nil
}

// Promote resolves the pending promotion, then passes the turn. On error the
// state is unchanged.
func (g *GameState) Promote(kind Kind) error {
	next := g.Clone()
	if err := next.promote(kind); err != nil {
		return err
	}
	*g = *next
	return nil
}

func (g *GameState) promote(kind Kind) error {
	if g.PendingPromotion == nil {
		return ErrNoPromotionPending
	}
	if !isPromotionKind(kind) {
		return fmt.Errorf("%w: %q", ErrInvalidPromotion, kind)
	}
	sq := g.PendingPromotion.Square
	g.Position.grid[sq.Row][sq.Col] = Piece{Color: g.PendingPromotion.Color, Kind: kind}
	g.PendingPromotion = nil
	g.Revert = nil
	return g.advance()
}

// CancelPromotion takes back the pawn move that raised the promotion.
func (g *GameState) CancelPromotion() error {
	if g.PendingPromotion == nil {
		return ErrNoPromotionPending
	}
	if g.Revert != nil {
		g.Position = g.Revert.Position
		g.CastlingRights = g.Revert.Rights
		g.LastMove = g.Revert.LastMove
	}
	g.PendingPromotion = nil
	g.Revert = nil
	return nil
}

func (g *GameState) advance() error {
	g.Turn = g.Turn.Opposite()
	return g.Refresh()
}

// Refresh recomputes check flags and the game status from the position.
func (g *GameState) Refresh() error {
	white, err := IsInCheck(&g.Position, White)
	if err != nil {
		return err
	}
	black, err := IsInCheck(&g.Position, Black)
	if err != nil {
		return err
	}
	g.WhiteInCheck, g.BlackInCheck = white, black
	status, err := Classify(&g.Position, g.Turn, g.CastlingRights)
	if err != nil {
		return err
	}
	g.Status = status
	return nil
}
