package chess

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// String returns the one-letter wire code, "w" or "b".
func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// Name is used in log lines and client payloads.
func (c Color) Name() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// homeRow is the back rank of the color, pawnRow its pawn start rank and
// forward the row delta of a pawn step.
func (c Color) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

func (c Color) pawnRow() int {
	if c == White {
		return 6
	}
	return 1
}

func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// promotionRow is the farthest rank from the color's own start.
func (c Color) promotionRow() int {
	if c == White {
		return 0
	}
	return 7
}

type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = map[Kind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

func (k Kind) String() string {
	if l, ok := kindLetters[k]; ok {
		return string(l)
	}
	return ""
}

func kindFromLetter(l byte) (Kind, bool) {
	for k, letter := range kindLetters {
		if letter == l {
			return k, true
		}
	}
	return NoKind, false
}

func (k Kind) isSlider() bool {
	return k == Rook || k == Bishop || k == Queen
}

// Piece is a (color, kind) tag. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  Kind
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Code returns the two-character wire code such as "wp" or "bk", or "" for
// an empty square.
func (p Piece) Code() string {
	if p.IsEmpty() {
		return ""
	}
	return p.Color.String() + p.Kind.String()
}

func (p Piece) String() string {
	return p.Code()
}

func ParsePiece(code string) (Piece, error) {
	if code == "" {
		return Piece{}, nil
	}
	if len(code) != 2 {
		return Piece{}, fmt.Errorf("%w: %q", ErrInvalidPieceCode, code)
	}
	color, err := ParseColor(code[:1])
	if err != nil {
		return Piece{}, fmt.Errorf("%w: %q", ErrInvalidPieceCode, code)
	}
	kind, ok := kindFromLetter(code[1])
	if !ok {
		return Piece{}, fmt.Errorf("%w: %q", ErrInvalidPieceCode, code)
	}
	return Piece{Color: color, Kind: kind}, nil
}

func (p Piece) MarshalText() ([]byte, error) {
	return []byte(p.Code()), nil
}

func (p *Piece) UnmarshalText(b []byte) error {
	parsed, err := ParsePiece(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = NoKind
		return nil
	}
	kind, ok := kindFromLetter(b[0])
	if !ok || len(b) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidPieceCode, b)
	}
	*k = kind
	return nil
}
