package chess

import "errors"

var (
	ErrOutOfBounds        = errors.New("square out of bounds")
	ErrKingNotFound       = errors.New("king not found")
	ErrIllegalMove        = errors.New("illegal move")
	ErrEmptySquare        = errors.New("no piece at from square")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrNoPromotionPending = errors.New("no promotion pending")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")
	ErrGameOver           = errors.New("game is over")
	ErrInvalidPieceCode   = errors.New("invalid piece code")
	ErrInvalidFEN         = errors.New("invalid FEN")
)
