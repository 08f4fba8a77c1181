package chess

import "fmt"

// Square is a board coordinate. Row 0 is the eighth rank, col 0 is the a-file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

// String returns the square name, e.g. "e2".
func (s Square) String() string {
	if !s.InBounds() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, 8-s.Row)
}

func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrOutOfBounds, name)
	}
	sq := Square{Row: 8 - int(name[1]-'0'), Col: int(name[0] - 'a')}
	if name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrOutOfBounds, name)
	}
	return sq, nil
}

func checkBounds(squares ...Square) error {
	for _, sq := range squares {
		if !sq.InBounds() {
			return fmt.Errorf("%w: %v", ErrOutOfBounds, sq)
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
