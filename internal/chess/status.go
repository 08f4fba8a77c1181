package chess

import "fmt"

type Status uint8

const (
	Active Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "active"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*s = Active
	case "checkmate":
		*s = Checkmate
	case "stalemate":
		*s = Stalemate
	default:
		return fmt.Errorf("unknown game status %q", b)
	}
	return nil
}

// GameStatus is the classification of a position for the side to move.
// Winner is set only for checkmate.
type GameStatus struct {
	Status Status `json:"status"`
	Winner *Color `json:"winner,omitempty"`
}

func (gs GameStatus) IsOver() bool {
	return gs.Status != Active
}

func (gs GameStatus) String() string {
	if gs.Winner != nil {
		return fmt.Sprintf("%s (%s wins)", gs.Status, gs.Winner.Name())
	}
	return gs.Status.String()
}

// Classify decides whether sideToMove is checkmated, stalemated or still has
// a legal move, castling included.
func Classify(pos *Position, sideToMove Color, rights CastlingRights) (GameStatus, error) {
	inCheck, err := IsInCheck(pos, sideToMove)
	if err != nil {
		return GameStatus{}, err
	}
	if hasLegalMove(pos, rights, sideToMove) {
		return GameStatus{Status: Active}, nil
	}
	if inCheck {
		winner := sideToMove.Opposite()
		return GameStatus{Status: Checkmate, Winner: &winner}, nil
	}
	return GameStatus{Status: Stalemate}, nil
}
