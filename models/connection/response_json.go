package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid string        `json:"game_uuid"`
	GridSize int           `json:"grid_size"`
	Ships    []mb.ShipSpec `json:"ships"`
}

type RespPlaceShip struct {
	RemainingShips []mb.ShipSpec `json:"remaining_ships"`
}

// RespPlayerBoard answers both random placement and clear placement.
type RespPlayerBoard struct {
	PlayerBoard    [][]uint8     `json:"player_board"`
	RemainingShips []mb.ShipSpec `json:"remaining_ships"`
}

type RespAttack struct {
	Outcome mb.AttackOutcome `json:"outcome"`
	IsTurn  bool             `json:"is_turn"`
}

type RespOpponentAttack struct {
	Outcomes []mb.AttackOutcome `json:"outcomes"`
	IsTurn   bool               `json:"is_turn"`
}

type RespEndGame struct {
	Winner string `json:"winner"`
}

type RespStatus struct {
	Phase                  string `json:"phase"`
	Turn                   string `json:"turn"`
	Difficulty             uint8  `json:"difficulty"`
	PlayerShipsRemaining   int    `json:"player_ships_remaining"`
	OpponentShipsRemaining int    `json:"opponent_ships_remaining"`
	PlayerHits             int    `json:"player_hits"`
	OpponentHits           int    `json:"opponent_hits"`
	Winner                 string `json:"winner"`

	PlayerBoard [][]uint8 `json:"player_board,omitempty"`
	// Ships not hit yet show as empty.
	OpponentBoard [][]uint8 `json:"opponent_board,omitempty"`
}

func NewRespStatus(status mb.GameStatus) RespStatus {
	return RespStatus{
		Phase:                  status.Phase.String(),
		Turn:                   status.Turn.String(),
		Difficulty:             status.Difficulty,
		PlayerShipsRemaining:   status.PlayerShipsRemaining,
		OpponentShipsRemaining: status.OpponentShipsRemaining,
		PlayerHits:             status.PlayerHits,
		OpponentHits:           status.OpponentHits,
		Winner:                 status.Winner.String(),
	}
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
