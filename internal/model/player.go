package model

import "github.com/benbeisheim/chess-backend/internal/chess"

type Player struct {
	ID    string
	Color chess.Color
}

type ClientPlayer struct {
	ID    string `json:"name"`
	Color string `json:"color"`
}

func newClientPlayer(id string, c chess.Color) ClientPlayer {
	if id == "" {
		return ClientPlayer{}
	}
	return ClientPlayer{ID: id, Color: c.Name()}
}
