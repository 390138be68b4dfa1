package battleship

type Side uint8

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

func (s Side) other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Player is the defensive half of one side: its grid, its fleet and how
// many hits it has scored on the other side.
type Player struct {
	side  Side
	grid  *Grid
	fleet *Fleet
	hits  int
}

func NewPlayer(side Side, gridSize int) *Player {
	return &Player{
		side:  side,
		grid:  NewGrid(gridSize),
		fleet: NewFleet(),
	}
}

func (p *Player) Side() Side {
	return p.side
}

func (p *Player) Grid() *Grid {
	return p.grid
}

func (p *Player) Fleet() *Fleet {
	return p.fleet
}

func (p *Player) Hits() int {
	return p.hits
}

func (p *Player) reset() {
	p.grid.clear()
	p.fleet.reset()
	p.hits = 0
}
