package chess

import (
	"encoding/json"
	"fmt"
)

// EncodePosition renders the grid as two-character codes ("wp", "bk", ...),
// with "" for empty squares. This is the format clients persist and send.
func EncodePosition(p *Position) [8][8]string {
	var out [8][8]string
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			out[row][col] = p.grid[row][col].Code()
		}
	}
	return out
}

func DecodePosition(codes [8][8]string) (Position, error) {
	var p Position
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc, err := ParsePiece(codes[row][col])
			if err != nil {
				return Position{}, fmt.Errorf("square %v: %w", Square{Row: row, Col: col}, err)
			}
			p.grid[row][col] = pc
		}
	}
	return p, nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	codes := EncodePosition(&p)
	rows := make([][]string, 8)
	for i := range codes {
		rows[i] = codes[i][:]
	}
	return json.Marshal(rows)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != 8 {
		return fmt.Errorf("position must have 8 rows, got %d", len(rows))
	}
	var codes [8][8]string
	for i, row := range rows {
		if len(row) != 8 {
			return fmt.Errorf("position row %d must have 8 squares, got %d", i, len(row))
		}
		copy(codes[i][:], row)
	}
	decoded, err := DecodePosition(codes)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
