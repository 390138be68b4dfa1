package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Attempts to find a random spot for a single ship before the
	// layout is abandoned.
	maxShipPlacementAttempts = 100

	// Full layouts tried from an empty board before random placement
	// gives up and reports a placement error.
	maxLayoutAttempts = 20
)

// footprint returns the cells a ship of length would occupy, starting at
// c and extending along o. The second value is false when a cell falls
// outside the grid.
func footprint(g *Grid, c Coordinates, length int, o Orientation) ([]Coordinates, bool) {
	cells := make([]Coordinates, 0, length)
	step := o.step()

	cell := c
	for i := 0; i < length; i++ {
		if !g.InBounds(cell) {
			return nil, false
		}
		cells = append(cells, cell)
		cell = cell.Add(step)
	}
	return cells, true
}

// touchesShip reports whether c or any of its 8 neighbours is occupied.
func touchesShip(g *Grid, c Coordinates) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if g.isState(NewCoordinates(c.Row+dr, c.Col+dc), PositionStateOccupied) {
				return true
			}
		}
	}
	return false
}

func checkPlacement(g *Grid, c Coordinates, length int, o Orientation) ([]Coordinates, error) {
	if length <= 0 {
		return nil, cerr.ErrInvalidShipLength(length)
	}
	if !o.IsValid() {
		return nil, cerr.ErrInvalidOrientation(uint8(o))
	}

	cells, ok := footprint(g, c, length, o)
	if !ok {
		return nil, cerr.ErrShipFootprintOutOfBound(c.Row, c.Col, length)
	}

	// Every footprint cell is checked against its own neighbourhood so a
	// ship squeezed between two others is caught on each side.
	for _, cell := range cells {
		if touchesShip(g, cell) {
			return nil, cerr.ErrShipTouchesAnother(cell.Row, cell.Col)
		}
	}
	return cells, nil
}

// CanPlace reports whether a ship of length fits at c along o without
// leaving the grid and without touching any ship, diagonals included.
func CanPlace(g *Grid, c Coordinates, length int, o Orientation) bool {
	_, err := checkPlacement(g, c, length, o)
	return err == nil
}

// ValidateAndPlace is the only way to put a ship on a grid. On success
// the footprint is marked occupied and a new ship is appended to fleet.
func ValidateAndPlace(g *Grid, fleet *Fleet, c Coordinates, length int, o Orientation, name string) (*Ship, error) {
	cells, err := checkPlacement(g, c, length, o)
	if err != nil {
		return nil, err
	}

	for _, cell := range cells {
		g.occupy(cell)
	}
	ship := newShip(name, cells)
	fleet.add(ship)
	return ship, nil
}

// RandomPlacement clears g and fleet and lays out every ship of specs at
// random spots. A ship that cannot be placed within its attempt budget
// restarts the layout; after maxLayoutAttempts layouts the board is left
// empty and a placement error is returned.
func RandomPlacement(g *Grid, fleet *Fleet, specs []ShipSpec, rng Rand) error {
	var err error
	for layout := 0; layout < maxLayoutAttempts; layout++ {
		g.clear()
		fleet.reset()

		if err = placeFleetRandomly(g, fleet, specs, rng); err == nil {
			return nil
		}
	}

	g.clear()
	fleet.reset()
	return err
}

func placeFleetRandomly(g *Grid, fleet *Fleet, specs []ShipSpec, rng Rand) error {
	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			if err := placeShipRandomly(g, fleet, spec, rng); err != nil {
				return err
			}
		}
	}
	return nil
}

func placeShipRandomly(g *Grid, fleet *Fleet, spec ShipSpec, rng Rand) error {
	for attempt := 0; attempt < maxShipPlacementAttempts; attempt++ {
		o := OrientationHorizontal
		if rng.Float64() > 0.5 {
			o = OrientationVertical
		}
		c := NewCoordinates(rng.Intn(g.size), rng.Intn(g.size))

		if _, err := ValidateAndPlace(g, fleet, c, spec.Length, o, spec.Name); err == nil {
			return nil
		}
	}
	return cerr.ErrRandomPlacementExhausted(spec.Name, maxShipPlacementAttempts)
}
