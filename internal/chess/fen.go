package chess

import (
	"fmt"
	"strings"
)

// ParseFEN builds a game state from the placement, side-to-move and castling
// fields of a FEN record. The en passant target and move clocks are ignored.
func ParseFEN(fen string) (*GameState, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: need at least placement and side to move", ErrInvalidFEN)
	}

	pos, err := parsePlacement(fields[0])
	if err != nil {
		return nil, err
	}

	g := &GameState{Position: pos, Status: GameStatus{Status: Active}}
	switch fields[1] {
	case "w":
		g.Turn = White
	case "b":
		g.Turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	if len(fields) > 2 && fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				g.CastlingRights.White.KingSide = true
			case 'Q':
				g.CastlingRights.White.QueenSide = true
			case 'k':
				g.CastlingRights.Black.KingSide = true
			case 'q':
				g.CastlingRights.Black.QueenSide = true
			default:
				return nil, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if err := validateSetup(&g.Position, g.Turn); err != nil {
		return nil, err
	}
	if err := g.Refresh(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return g, nil
}

// validateSetup requires one king per color and that the side which just
// moved is not left in check.
func validateSetup(pos *Position, turn Color) error {
	for _, c := range []Color{White, Black} {
		kings := 0
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				if pos.grid[row][col] == (Piece{Color: c, Kind: King}) {
					kings++
				}
			}
		}
		if kings != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c.Name(), kings)
		}
	}
	inCheck, err := IsInCheck(pos, turn.Opposite())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	if inCheck {
		return fmt.Errorf("%w: %s to move while %s is in check", ErrInvalidFEN, turn.Name(), turn.Opposite().Name())
	}
	return nil
}

func parsePlacement(s string) (Position, error) {
	var pos Position
	ranks := strings.Split(s, "/")
	if len(ranks) != 8 {
		return pos, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			if col > 7 {
				return pos, fmt.Errorf("%w: rank %d too long", ErrInvalidFEN, 8-row)
			}
			kind, ok := kindFromLetter(toLower(ch))
			if !ok {
				return pos, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			color := Black
			if ch >= 'A' && ch <= 'Z' {
				color = White
			}
			pos.grid[row][col] = Piece{Color: color, Kind: kind}
			col++
		}
		if col != 8 {
			return pos, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-row, col)
		}
	}
	return pos, nil
}

// FEN renders the position with side to move and castling rights. The en
// passant field is always "-" and the clocks are fixed.
func (g *GameState) FEN() string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := g.Position.grid[row][col]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&b, "%d", empty)
				empty = 0
			}
			letter := pc.Kind.String()
			if pc.Color == White {
				letter = strings.ToUpper(letter)
			}
			b.WriteString(letter)
		}
		if empty > 0 {
			fmt.Fprintf(&b, "%d", empty)
		}
		if row < 7 {
			b.WriteByte('/')
		}
	}

	castling := ""
	if g.CastlingRights.White.KingSide {
		castling += "K"
	}
	if g.CastlingRights.White.QueenSide {
		castling += "Q"
	}
	if g.CastlingRights.Black.KingSide {
		castling += "k"
	}
	if g.CastlingRights.Black.QueenSide {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	fmt.Fprintf(&b, " %s %s - 0 1", g.Turn, castling)
	return b.String()
}

func toLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
