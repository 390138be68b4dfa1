package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID
	CodeCreateGame
	CodePlaceShip
	CodeRandomPlacement
	CodeClearPlacement
	CodeSetDifficulty
	CodeStartGame
	CodeAttack

	// Server pushes the computer's shots right after the player's turn ends
	CodeOpponentAttack
	CodeEndGame
	CodeStatus

	// Play again on the same session with fresh boards
	CodeRematch
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
