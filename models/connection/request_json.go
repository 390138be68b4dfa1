package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

// ReqCreateGame leaves GameDifficulty nil when the client sends none.
type ReqCreateGame struct {
	GameDifficulty *uint8 `json:"difficulty,omitempty"`
}

type ReqPlaceShip struct {
	Row         int            `json:"row"`
	Col         int            `json:"col"`
	Length      int            `json:"length"`
	Orientation mb.Orientation `json:"orientation"`
	Name        string         `json:"name"`
}

type ReqSetDifficulty struct {
	GameDifficulty uint8 `json:"difficulty"`
}

type ReqAttack struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
