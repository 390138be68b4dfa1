package battleship

import (
	"github.com/hashicorp/go-multierror"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	ShipNameCarrier    = "Carrier"
	ShipNameBattleship = "Battleship"
	ShipNameCruiser    = "Cruiser"
	ShipNameDestroyer  = "Destroyer"
	ShipNameBoat       = "Boat"
)

// ShipSpec describes one class of ship and how many of it a fleet holds.
type ShipSpec struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
	Count  int    `json:"count"`
}

// ReferenceFleet returns the standard configuration: 11 ships covering
// 25 cells.
func ReferenceFleet() []ShipSpec {
	return []ShipSpec{
		{Name: ShipNameCarrier, Length: 5, Count: 1},
		{Name: ShipNameBattleship, Length: 4, Count: 1},
		{Name: ShipNameCruiser, Length: 3, Count: 2},
		{Name: ShipNameDestroyer, Length: 2, Count: 3},
		{Name: ShipNameBoat, Length: 1, Count: 4},
	}
}

// FleetSize returns how many ships and cells a complete fleet built from
// specs holds.
func FleetSize(specs []ShipSpec) (ships, cells int) {
	for _, spec := range specs {
		ships += spec.Count
		cells += spec.Length * spec.Count
	}
	return ships, cells
}

type Ship struct {
	name   string
	length int
	hits   int
	cells  []Coordinates
}

func newShip(name string, cells []Coordinates) *Ship {
	return &Ship{
		name:   name,
		length: len(cells),
		hits:   0,
		cells:  cells,
	}
}

func (sh *Ship) Name() string {
	return sh.name
}

func (sh *Ship) Length() int {
	return sh.length
}

func (sh *Ship) Hits() int {
	return sh.hits
}

// Cells returns a copy of the ship footprint in placement order.
func (sh *Ship) Cells() []Coordinates {
	cells := make([]Coordinates, len(sh.cells))
	copy(cells, sh.cells)
	return cells
}

func (sh *Ship) Covers(c Coordinates) bool {
	for _, cell := range sh.cells {
		if cell == c {
			return true
		}
	}
	return false
}

func (sh *Ship) gotHit() {
	if sh.hits < sh.length {
		sh.hits++
	}
}

func (sh *Ship) IsSunk() bool {
	return sh.hits == sh.length
}

// Fleet is the ordered set of ships belonging to one side.
type Fleet struct {
	ships []*Ship
}

func NewFleet() *Fleet {
	return &Fleet{ships: make([]*Ship, 0, 11)}
}

func (f *Fleet) Ships() []*Ship {
	return f.ships
}

func (f *Fleet) Len() int {
	return len(f.ships)
}

func (f *Fleet) add(ship *Ship) {
	f.ships = append(f.ships, ship)
}

// reset drops every ship. Slices handed out by Ships stay untouched.
func (f *Fleet) reset() {
	f.ships = make([]*Ship, 0, 11)
}

// ShipAt returns the ship whose footprint contains c, or nil.
func (f *Fleet) ShipAt(c Coordinates) *Ship {
	for _, ship := range f.ships {
		if ship.Covers(c) {
			return ship
		}
	}
	return nil
}

func (f *Fleet) TotalCells() int {
	total := 0
	for _, ship := range f.ships {
		total += ship.length
	}
	return total
}

// Remaining counts the ships still afloat.
func (f *Fleet) Remaining() int {
	remaining := 0
	for _, ship := range f.ships {
		if !ship.IsSunk() {
			remaining++
		}
	}
	return remaining
}

func (f *Fleet) countOf(name string, length int) int {
	n := 0
	for _, ship := range f.ships {
		if ship.name == name && ship.length == length {
			n++
		}
	}
	return n
}

// Missing lists, per class, how many ships are still to be placed.
// Classes with nothing missing are omitted.
func (f *Fleet) Missing(specs []ShipSpec) []ShipSpec {
	missing := make([]ShipSpec, 0, len(specs))
	for _, spec := range specs {
		if left := spec.Count - f.countOf(spec.Name, spec.Length); left > 0 {
			missing = append(missing, ShipSpec{Name: spec.Name, Length: spec.Length, Count: left})
		}
	}
	return missing
}

// Validate checks the fleet holds exactly the ships described by specs.
// Every missing class is reported in a single aggregated error.
func (f *Fleet) Validate(specs []ShipSpec) error {
	var result *multierror.Error
	for _, spec := range f.Missing(specs) {
		result = multierror.Append(result, cerr.ErrMissingShips(spec.Name, spec.Count))
	}

	if err := result.ErrorOrNil(); err != nil {
		return cerr.ErrFleetIncomplete(err)
	}
	return nil
}

// CheckWin reports whether every ship of the fleet is sunk.
func CheckWin(f *Fleet) bool {
	for _, ship := range f.ships {
		if !ship.IsSunk() {
			return false
		}
	}
	return true
}
