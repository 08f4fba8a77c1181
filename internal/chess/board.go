package chess

import (
	"fmt"
	"strings"
)

type MoveFlag uint8

const (
	Normal MoveFlag = iota
	Castle
)

// Move is a value describing a proposed or accepted move. Promotion is NoKind
// unless the mover chose a piece ahead of time.
type Move struct {
	From      Square   `json:"from"`
	To        Square   `json:"to"`
	Promotion Kind     `json:"promotion,omitempty"`
	Flag      MoveFlag `json:"flag,omitempty"`
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += "=" + m.Promotion.String()
	}
	return s
}

// Position is an 8x8 grid of pieces. It is a plain value: assigning or
// cloning it yields an independent copy.
type Position struct {
	grid [8][8]Piece
}

func InitialPosition() Position {
	var p Position
	back := [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, kind := range back {
		p.grid[0][col] = Piece{Color: Black, Kind: kind}
		p.grid[1][col] = Piece{Color: Black, Kind: Pawn}
		p.grid[6][col] = Piece{Color: White, Kind: Pawn}
		p.grid[7][col] = Piece{Color: White, Kind: kind}
	}
	return p
}

func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// PieceAt reports the piece on sq. The bool is false for empty or
// out-of-bounds squares.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	if !sq.InBounds() {
		return Piece{}, false
	}
	pc := p.grid[sq.Row][sq.Col]
	return pc, !pc.IsEmpty()
}

func (p *Position) at(sq Square) Piece {
	return p.grid[sq.Row][sq.Col]
}

func (p *Position) Set(sq Square, pc Piece) error {
	if err := checkBounds(sq); err != nil {
		return err
	}
	p.grid[sq.Row][sq.Col] = pc
	return nil
}

func (p *Position) Clear(sq Square) error {
	return p.Set(sq, Piece{})
}

func (p *Position) isEmpty(sq Square) bool {
	return p.grid[sq.Row][sq.Col].IsEmpty()
}

// ApplyMove mutates the position in place. It does not check legality; a
// castle also relocates the rook and a move carrying a promotion kind that
// lands a pawn on its last rank replaces the pawn.
func (p *Position) ApplyMove(m Move) error {
	if err := checkBounds(m.From, m.To); err != nil {
		return err
	}
	pc := p.at(m.From)
	if pc.IsEmpty() {
		return fmt.Errorf("%w: %v", ErrEmptySquare, m.From)
	}
	p.grid[m.From.Row][m.From.Col] = Piece{}
	if pc.Kind == Pawn && m.Promotion != NoKind && m.To.Row == pc.Color.promotionRow() {
		pc.Kind = m.Promotion
	}
	p.grid[m.To.Row][m.To.Col] = pc

	if isCastle(pc, m) {
		rookFrom, rookTo := castleRookSquares(m)
		rook := p.at(rookFrom)
		p.grid[rookFrom.Row][rookFrom.Col] = Piece{}
		p.grid[rookTo.Row][rookTo.Col] = rook
	}
	return nil
}

// WithMoveApplied is the pure form of ApplyMove.
func (p *Position) WithMoveApplied(m Move) (*Position, error) {
	next := p.Clone()
	if err := next.ApplyMove(m); err != nil {
		return nil, err
	}
	return next, nil
}

// pieces calls fn for every occupied square holding a piece of color c.
func (p *Position) pieces(c Color, fn func(Square, Piece)) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := p.grid[row][col]
			if !pc.IsEmpty() && pc.Color == c {
				fn(Square{Row: row, Col: col}, pc)
			}
		}
	}
}

// String draws the board with rank 8 on top, for test failures and logs.
func (p *Position) String() string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&b, "%d ", 8-row)
		for col := 0; col < 8; col++ {
			code := p.grid[row][col].Code()
			if code == "" {
				code = ".."
			}
			b.WriteString(code)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a  b  c  d  e  f  g  h\n")
	return b.String()
}
