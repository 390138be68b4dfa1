package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	PositionStateEmpty uint8 = iota
	PositionStateOccupied
	PositionStateHit
	PositionStateMiss
	PositionStateSunk
)

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

// Add returns the coordinates moved by one step of d.
func (c Coordinates) Add(d Direction) Coordinates {
	return Coordinates{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// Direction is a unit vector on the grid.
type Direction struct {
	DRow int `json:"d_row"`
	DCol int `json:"d_col"`
}

var orthogonalDirections = [4]Direction{
	{DRow: 1, DCol: 0},
	{DRow: -1, DCol: 0},
	{DRow: 0, DCol: 1},
	{DRow: 0, DCol: -1},
}

// OrthogonalDirections returns the four unit moves in the order the hunt
// set is seeded with.
func OrthogonalDirections() []Direction {
	directions := orthogonalDirections
	return directions[:]
}

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "horizontal"
	case OrientationVertical:
		return "vertical"
	default:
		return "unknown"
	}
}

func (o Orientation) IsValid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

// Toggle rotates the orientation by 90 degrees.
func (o Orientation) Toggle() Orientation {
	if o == OrientationHorizontal {
		return OrientationVertical
	}
	return OrientationHorizontal
}

func (o Orientation) step() Direction {
	if o == OrientationVertical {
		return Direction{DRow: 1}
	}
	return Direction{DCol: 1}
}

// Grid is the authoritative shot and occupancy state of one side.
// Indexed as cells[row][col].
type Grid struct {
	size  int
	cells [][]uint8
}

// Creates a new default grid
// All indexes are PositionStateEmpty
func NewGrid(gridSize int) *Grid {
	cells := make([][]uint8, gridSize)
	for i := 0; i < gridSize; i++ {
		cells[i] = make([]uint8, gridSize)
	}
	return &Grid{size: gridSize, cells: cells}
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) InBounds(c Coordinates) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

func (g *Grid) CellState(c Coordinates) (uint8, error) {
	if !g.InBounds(c) {
		return 0, cerr.ErrXorYOutOfGridBound(c.Row, c.Col)
	}
	return g.cells[c.Row][c.Col], nil
}

// IsShot reports whether a shot already landed on c. Sunk cells count as
// shot since a ship is only sunk after every one of its cells was hit.
func (g *Grid) IsShot(c Coordinates) bool {
	if !g.InBounds(c) {
		return false
	}
	switch g.cells[c.Row][c.Col] {
	case PositionStateHit, PositionStateMiss, PositionStateSunk:
		return true
	}
	return false
}

func (g *Grid) isState(c Coordinates, state uint8) bool {
	return g.InBounds(c) && g.cells[c.Row][c.Col] == state
}

// MarkShot records the result of a shot on c. Hit and Miss require an
// unshot cell; Sunk is only allowed on top of a Hit.
func (g *Grid) MarkShot(c Coordinates, state uint8) error {
	if !g.InBounds(c) {
		return cerr.ErrXorYOutOfGridBound(c.Row, c.Col)
	}

	current := g.cells[c.Row][c.Col]
	switch state {
	case PositionStateHit, PositionStateMiss:
		if g.IsShot(c) {
			return cerr.ErrPositionAlreadyShot(c.Row, c.Col)
		}
	case PositionStateSunk:
		if current != PositionStateHit {
			return cerr.ErrInvalidShotState(state)
		}
	default:
		return cerr.ErrInvalidShotState(state)
	}

	g.cells[c.Row][c.Col] = state
	return nil
}

func (g *Grid) occupy(c Coordinates) {
	g.cells[c.Row][c.Col] = PositionStateOccupied
}

func (g *Grid) clear() {
	for i := range g.cells {
		for j := range g.cells[i] {
			g.cells[i][j] = PositionStateEmpty
		}
	}
}

// UnshotCells returns every cell not yet marked Hit, Miss or Sunk in row-major order.
func (g *Grid) UnshotCells() []Coordinates {
	unshot := make([]Coordinates, 0, g.size*g.size)
	for row := 0; row < g.size; row++ {
		for col := 0; col < g.size; col++ {
			c := NewCoordinates(row, col)
			if !g.IsShot(c) {
				unshot = append(unshot, c)
			}
		}
	}
	return unshot
}

// Snapshot copies the cell states. With hideShips, unhit ship cells are
// reported as empty.
func (g *Grid) Snapshot(hideShips bool) [][]uint8 {
	snapshot := make([][]uint8, g.size)
	for i := range g.cells {
		snapshot[i] = make([]uint8, g.size)
		copy(snapshot[i], g.cells[i])

		if !hideShips {
			continue
		}
		for j, state := range snapshot[i] {
			if state == PositionStateOccupied {
				snapshot[i][j] = PositionStateEmpty
			}
		}
	}
	return snapshot
}
