package error

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the engine wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrOutOfBounds      = errors.New("coordinates out of grid bound")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPlacement        = errors.New("invalid ship placement")
	ErrInvalidState     = errors.New("invalid game state")

	ErrGameNotFound      = errors.New("game not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidDifficulty = errors.New("invalid game difficulty")
)

func ErrXorYOutOfGridBound(row, col int) error {
	return fmt.Errorf("%w\trow: %d\tcol: %d", ErrOutOfBounds, row, col)
}

func ErrPositionAlreadyShot(row, col int) error {
	return fmt.Errorf("%w: this position is already shot in previous rounds\trow: %d\tcol: %d", ErrInvalidOperation, row, col)
}

func ErrInvalidShotState(state uint8) error {
	return fmt.Errorf("%w: cannot mark a shot with cell state %d", ErrInvalidOperation, state)
}

func ErrNotTurnForAttacker(side string) error {
	return fmt.Errorf("%w: it is not the turn of %s", ErrInvalidOperation, side)
}

func ErrShipFootprintOutOfBound(row, col, length int) error {
	return fmt.Errorf("%w: footprint leaves the grid\trow: %d\tcol: %d\tlength: %d", ErrPlacement, row, col, length)
}

func ErrShipTouchesAnother(row, col int) error {
	return fmt.Errorf("%w: ship overlaps or touches another ship\trow: %d\tcol: %d", ErrPlacement, row, col)
}

func ErrShipNotAvailable(name string, length int) error {
	return fmt.Errorf("%w: no %s of length %d left to place", ErrPlacement, name, length)
}

func ErrRandomPlacementExhausted(name string, attempts int) error {
	return fmt.Errorf("%w: could not place %s after %d attempts", ErrPlacement, name, attempts)
}

func ErrInvalidShipLength(length int) error {
	return fmt.Errorf("%w: ship length must be positive, got %d", ErrPlacement, length)
}

func ErrFleetIncomplete(details error) error {
	return fmt.Errorf("%w: fleet is incomplete: %w", ErrInvalidState, details)
}

func ErrMissingShips(name string, missing int) error {
	return fmt.Errorf("%s: %d left to place", name, missing)
}

func ErrGamePhase(action, phase string) error {
	return fmt.Errorf("%w: cannot %s while game is in %s phase", ErrInvalidState, action, phase)
}

func ErrNoUnshotCells() error {
	return fmt.Errorf("%w: no unshot cells left on the board", ErrInvalidState)
}

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("%w: game with this uuid does not exist, uuid: %s", ErrGameNotFound, gameUuid)
}

func ErrGameIsNil() error {
	return fmt.Errorf("%w: no game is attached to this session", ErrInvalidState)
}

func ErrSessionNotExists(sessionId string) error {
	return fmt.Errorf("%w: session id: %s", ErrSessionNotFound, sessionId)
}

func ErrGameDifficulty(difficulty uint8) error {
	return fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
}

func ErrInvalidOrientation(orientation uint8) error {
	return fmt.Errorf("%w: unknown orientation %d", ErrPlacement, orientation)
}
