package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Rejection-sampling budget of randomUnshotCell before it falls back
	// to picking from the list of unshot cells.
	maxRandomShotAttempts = 1000

	// Candidates smartCell samples under the miss-avoidance rule before
	// settling for any unshot cell.
	maxSmartShotAttempts = 100

	// Medium follows up on a hit only when a roll exceeds this.
	mediumHuntThreshold = 0.3

	// Medium ignores a neighbouring miss when a roll exceeds this.
	mediumMissOverrideThreshold = 0.7
)

// Rand is the source of randomness of the engine. *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type ShotRecord struct {
	Coordinates Coordinates `json:"coordinates"`
	Hit         bool        `json:"hit"`
}

// AIMemory is what the computer remembers between its shots.
type AIMemory struct {
	LastHit        *Coordinates
	HuntDirections []Direction
	HuntingMode    bool
	ShotHistory    []ShotRecord
}

// Targeter picks the computer's next shot on the player's grid.
type Targeter struct {
	difficulty uint8
	rng        Rand
	memory     AIMemory
}

func NewTargeter(difficulty uint8, rng Rand) *Targeter {
	return &Targeter{
		difficulty: difficulty,
		rng:        rng,
	}
}

// Memory returns a copy of the current memory.
func (t *Targeter) Memory() AIMemory {
	memory := AIMemory{HuntingMode: t.memory.HuntingMode}
	if t.memory.LastHit != nil {
		lastHit := *t.memory.LastHit
		memory.LastHit = &lastHit
	}
	memory.HuntDirections = append([]Direction(nil), t.memory.HuntDirections...)
	memory.ShotHistory = append([]ShotRecord(nil), t.memory.ShotHistory...)
	return memory
}

// Reset forgets everything, shot history included.
func (t *Targeter) Reset() {
	t.memory = AIMemory{}
}

func (t *Targeter) setDifficulty(difficulty uint8) {
	t.difficulty = difficulty
}

func (t *Targeter) stopHunting() {
	t.memory.HuntingMode = false
	t.memory.LastHit = nil
	t.memory.HuntDirections = nil
}

// NextTarget chooses the coordinates of the next shot on g according to
// the difficulty policy.
func (t *Targeter) NextTarget(g *Grid) (Coordinates, error) {
	var (
		target Coordinates
		ok     bool
	)

	switch t.difficulty {
	case GameDifficultyEasy:
		target, ok = t.randomUnshotCell(g)

	case GameDifficultyMedium:
		// Medium sometimes throws away what it knows
		if t.memory.HuntingMode && t.rng.Float64() > mediumHuntThreshold {
			target, ok = t.smartCell(g)
		} else {
			target, ok = t.randomUnshotCell(g)
		}

	default:
		target, ok = t.smartCell(g)
	}

	if !ok {
		return Coordinates{}, cerr.ErrNoUnshotCells()
	}
	return target, nil
}

// Observe updates the memory with the result of a shot fired at c.
func (t *Targeter) Observe(c Coordinates, result AttackResult) {
	t.memory.ShotHistory = append(t.memory.ShotHistory, ShotRecord{Coordinates: c, Hit: result.Hit})

	if result.Hit && t.difficulty != GameDifficultyEasy {
		lastHit := c
		t.memory.LastHit = &lastHit
		t.memory.HuntingMode = true

		if len(t.memory.HuntDirections) == 0 {
			t.memory.HuntDirections = OrthogonalDirections()
		}
	}

	if result.Sunk {
		t.stopHunting()
	}
}

// randomUnshotCell samples uniformly among the cells of g that were not
// shot yet. The second value is false only when every cell was shot.
func (t *Targeter) randomUnshotCell(g *Grid) (Coordinates, bool) {
	for attempt := 0; attempt < maxRandomShotAttempts; attempt++ {
		c := NewCoordinates(t.rng.Intn(g.size), t.rng.Intn(g.size))
		if !g.IsShot(c) {
			return c, true
		}
	}

	unshot := g.UnshotCells()
	if len(unshot) == 0 {
		return Coordinates{}, false
	}
	return unshot[t.rng.Intn(len(unshot))], true
}

// smartCell first follows up around the last hit, discarding directions
// that lead off the grid or onto a shot cell. Without a follow-up it
// samples random cells, preferring ones with no miss next to them.
func (t *Targeter) smartCell(g *Grid) (Coordinates, bool) {
	if t.memory.LastHit != nil {
		for len(t.memory.HuntDirections) > 0 {
			i := t.rng.Intn(len(t.memory.HuntDirections))
			next := t.memory.LastHit.Add(t.memory.HuntDirections[i])

			if g.InBounds(next) && !g.IsShot(next) {
				return next, true
			}

			t.memory.HuntDirections = append(t.memory.HuntDirections[:i], t.memory.HuntDirections[i+1:]...)
		}
	}

	for attempt := 0; attempt < maxSmartShotAttempts; attempt++ {
		c, ok := t.randomUnshotCell(g)
		if !ok {
			return Coordinates{}, false
		}
		if !t.nextToMiss(g, c) {
			return c, true
		}
	}
	return t.randomUnshotCell(g)
}

// nextToMiss reports whether an orthogonal neighbour of c is a miss.
// On medium each miss found is overlooked with some probability.
func (t *Targeter) nextToMiss(g *Grid, c Coordinates) bool {
	for _, d := range orthogonalDirections {
		if !g.isState(c.Add(d), PositionStateMiss) {
			continue
		}
		if t.difficulty == GameDifficultyMedium && t.rng.Float64() > mediumMissOverrideThreshold {
			continue
		}
		return true
	}
	return false
}
