package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

// AttackResult is what a single shot did to the defending side.
// Ship is set whenever the shot hit, Sunk only when it finished the ship.
type AttackResult struct {
	Hit  bool
	Sunk bool
	Ship *Ship
}

// ResolveAttack applies a shot at c to the given grid and fleet. Side
// effects stay within that pair.
func ResolveAttack(g *Grid, fleet *Fleet, c Coordinates) (AttackResult, error) {
	if !g.InBounds(c) {
		return AttackResult{}, cerr.ErrXorYOutOfGridBound(c.Row, c.Col)
	}
	if g.IsShot(c) {
		return AttackResult{}, cerr.ErrPositionAlreadyShot(c.Row, c.Col)
	}

	ship := fleet.ShipAt(c)
	if ship == nil {
		if err := g.MarkShot(c, PositionStateMiss); err != nil {
			return AttackResult{}, err
		}
		return AttackResult{Hit: false}, nil
	}

	if err := g.MarkShot(c, PositionStateHit); err != nil {
		return AttackResult{}, err
	}
	ship.gotHit()

	result := AttackResult{Hit: true, Ship: ship}
	if ship.IsSunk() {
		for _, cell := range ship.cells {
			if err := g.MarkShot(cell, PositionStateSunk); err != nil {
				return AttackResult{}, err
			}
		}
		result.Sunk = true
	}
	return result, nil
}
