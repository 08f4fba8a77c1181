// Package chess holds the rules: the position, pseudo-legal and legal move
// generation, check and castling, promotion and game-end classification.
//
// Rows run 0..7 from black's back rank to white's, columns 0..7 from the a
// file to the h file. Everything except GameState is a pure function over a
// Position value, so callers simulate moves by cloning.
package chess
