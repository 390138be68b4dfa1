package battleship

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	GameDifficultyEasy uint8 = iota
	GameDifficultyMedium
	GameDifficultyHard
)

const DefaultGridSize = 10

func IsDifficultyValid(difficulty uint8) bool {
	return difficulty == GameDifficultyEasy || difficulty == GameDifficultyMedium || difficulty == GameDifficultyHard
}

func DifficultyString(difficulty uint8) string {
	switch difficulty {
	case GameDifficultyEasy:
		return "easy"
	case GameDifficultyMedium:
		return "medium"
	case GameDifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

type GamePhase uint8

const (
	GamePhaseSetup GamePhase = iota
	GamePhaseInProgress
	GamePhaseFinished
)

func (p GamePhase) String() string {
	switch p {
	case GamePhaseSetup:
		return "setup"
	case GamePhaseInProgress:
		return "in progress"
	case GamePhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AttackOutcome is the observable result of one shot.
type AttackOutcome struct {
	Coordinates   Coordinates   `json:"coordinates"`
	Hit           bool          `json:"hit"`
	SunkShipName  string        `json:"sunk_ship_name,omitempty"`
	SunkShipCells []Coordinates `json:"sunk_ship_cells,omitempty"`
	GameWon       bool          `json:"game_won,omitempty"`
}

type GameStatus struct {
	Phase                  GamePhase `json:"phase"`
	Turn                   Side      `json:"turn"`
	Difficulty             uint8     `json:"difficulty"`
	PlayerShipsRemaining   int       `json:"player_ships_remaining"`
	OpponentShipsRemaining int       `json:"opponent_ships_remaining"`
	PlayerHits             int       `json:"player_hits"`
	OpponentHits           int       `json:"opponent_hits"`
	Winner                 Side      `json:"winner"`
}

// AttackObserver is notified synchronously after every resolved shot.
type AttackObserver interface {
	OnAttack(attacker Side, outcome AttackOutcome)
}

type AttackObserverFunc func(attacker Side, outcome AttackOutcome)

func (f AttackObserverFunc) OnAttack(attacker Side, outcome AttackOutcome) {
	f(attacker, outcome)
}

// Game is one human vs computer session. It is not safe for concurrent
// use; the owner drives it one call at a time.
type Game struct {
	uuid       string
	gridSize   int
	specs      []ShipSpec
	difficulty uint8
	phase      GamePhase
	turn       Side
	winner     Side
	player     *Player
	opponent   *Player
	targeter   *Targeter
	rng        Rand
	observers  []AttackObserver
}

type GameOption func(*Game) error

func WithUuid(gameUuid string) GameOption {
	return func(g *Game) error {
		g.uuid = gameUuid
		return nil
	}
}

func WithGridSize(gridSize int) GameOption {
	return func(g *Game) error {
		if gridSize <= 0 {
			return fmt.Errorf("grid size must be positive, got %d", gridSize)
		}
		g.gridSize = gridSize
		return nil
	}
}

func WithShipSpecs(specs []ShipSpec) GameOption {
	return func(g *Game) error {
		if len(specs) == 0 {
			return fmt.Errorf("at least one ship spec is required")
		}
		for _, spec := range specs {
			if spec.Length <= 0 || spec.Count <= 0 {
				return fmt.Errorf("invalid ship spec %+v: length and count must be positive", spec)
			}
		}
		g.specs = append([]ShipSpec(nil), specs...)
		return nil
	}
}

func WithDifficulty(difficulty uint8) GameOption {
	return func(g *Game) error {
		if !IsDifficultyValid(difficulty) {
			return cerr.ErrGameDifficulty(difficulty)
		}
		g.difficulty = difficulty
		return nil
	}
}

// WithRand injects the random source, e.g. a seeded *rand.Rand in tests.
func WithRand(rng Rand) GameOption {
	return func(g *Game) error {
		if rng == nil {
			return fmt.Errorf("random source is nil")
		}
		g.rng = rng
		return nil
	}
}

func WithObserver(observer AttackObserver) GameOption {
	return func(g *Game) error {
		g.observers = append(g.observers, observer)
		return nil
	}
}

func NewGame(optFuncs ...GameOption) (*Game, error) {
	game := Game{
		gridSize:   DefaultGridSize,
		specs:      ReferenceFleet(),
		difficulty: GameDifficultyMedium,
		phase:      GamePhaseSetup,
		turn:       SidePlayer,
		winner:     SideNone,
	}
	for _, opt := range optFuncs {
		if err := opt(&game); err != nil {
			return nil, err
		}
	}

	if game.uuid == "" {
		game.uuid = uuid.NewString()[:6]
	}
	if game.rng == nil {
		game.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	game.player = NewPlayer(SidePlayer, game.gridSize)
	game.opponent = NewPlayer(SideOpponent, game.gridSize)
	game.targeter = NewTargeter(game.difficulty, game.rng)

	return &game, nil
}

// BeginSetup creates a game in the setup phase for the given board size
// and fleet configuration.
func BeginSetup(gridSize int, specs []ShipSpec, optFuncs ...GameOption) (*Game, error) {
	opts := append([]GameOption{WithGridSize(gridSize), WithShipSpecs(specs)}, optFuncs...)
	return NewGame(opts...)
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) GridSize() int {
	return g.gridSize
}

func (g *Game) ShipSpecs() []ShipSpec {
	return append([]ShipSpec(nil), g.specs...)
}

func (g *Game) Difficulty() uint8 {
	return g.difficulty
}

func (g *Game) Phase() GamePhase {
	return g.phase
}

func (g *Game) Turn() Side {
	return g.turn
}

func (g *Game) Winner() Side {
	return g.winner
}

func (g *Game) IsFinished() bool {
	return g.phase == GamePhaseFinished
}

// FetchPlayer returns the defensive state of side.
func (g *Game) FetchPlayer(side Side) *Player {
	if side == SideOpponent {
		return g.opponent
	}
	return g.player
}

func (g *Game) TargeterMemory() AIMemory {
	return g.targeter.Memory()
}

// PlayerBoard is the player's own grid, ships included.
func (g *Game) PlayerBoard() [][]uint8 {
	return g.player.grid.Snapshot(false)
}

// OpponentBoard is the computer's grid as the player may see it.
func (g *Game) OpponentBoard() [][]uint8 {
	return g.opponent.grid.Snapshot(true)
}

// RemainingShips lists the ship classes the player still has to place.
func (g *Game) RemainingShips() []ShipSpec {
	return g.player.fleet.Missing(g.specs)
}

func (g *Game) SetDifficulty(difficulty uint8) error {
	if g.phase != GamePhaseSetup {
		return cerr.ErrGamePhase("change difficulty", g.phase.String())
	}
	if !IsDifficultyValid(difficulty) {
		return cerr.ErrGameDifficulty(difficulty)
	}
	g.difficulty = difficulty
	g.targeter.setDifficulty(difficulty)
	return nil
}

// ValidateAndPlace puts one of the player's remaining ships on the board.
func (g *Game) ValidateAndPlace(c Coordinates, length int, o Orientation, name string) error {
	if g.phase != GamePhaseSetup {
		return cerr.ErrGamePhase("place ships", g.phase.String())
	}
	if !g.isShipAvailable(name, length) {
		return cerr.ErrShipNotAvailable(name, length)
	}

	_, err := ValidateAndPlace(g.player.grid, g.player.fleet, c, length, o, name)
	return err
}

func (g *Game) isShipAvailable(name string, length int) bool {
	for _, spec := range g.RemainingShips() {
		if spec.Name == name && spec.Length == length {
			return true
		}
	}
	return false
}

// RandomizePlacement replaces whatever the player placed so far with a
// complete random layout.
func (g *Game) RandomizePlacement() error {
	if g.phase != GamePhaseSetup {
		return cerr.ErrGamePhase("place ships", g.phase.String())
	}
	return RandomPlacement(g.player.grid, g.player.fleet, g.specs, g.rng)
}

// ClearPlacement removes every ship of the player. No-op outside setup.
func (g *Game) ClearPlacement() {
	if g.phase != GamePhaseSetup {
		return
	}
	g.player.reset()
}

// StartGame requires the player's fleet to be complete, lays out the
// computer's fleet at random and hands the first shot to the player.
func (g *Game) StartGame() error {
	if g.phase != GamePhaseSetup {
		return cerr.ErrGamePhase("start game", g.phase.String())
	}
	if err := g.player.fleet.Validate(g.specs); err != nil {
		return err
	}
	if err := RandomPlacement(g.opponent.grid, g.opponent.fleet, g.specs, g.rng); err != nil {
		return err
	}

	g.targeter.Reset()
	g.phase = GamePhaseInProgress
	g.turn = SidePlayer
	g.winner = SideNone
	return nil
}

// SubmitPlayerShot fires the player's shot at c on the computer's grid.
// A hit that does not sink keeps the turn with the player.
func (g *Game) SubmitPlayerShot(c Coordinates) (AttackOutcome, error) {
	if g.phase != GamePhaseInProgress {
		return AttackOutcome{}, cerr.ErrGamePhase("attack", g.phase.String())
	}
	if g.turn != SidePlayer {
		return AttackOutcome{}, cerr.ErrNotTurnForAttacker(SidePlayer.String())
	}

	outcome, result, err := g.attack(SidePlayer, c)
	if err != nil {
		return AttackOutcome{}, err
	}

	if g.phase == GamePhaseInProgress && !(result.Hit && !result.Sunk) {
		g.turn = SideOpponent
	}
	return outcome, nil
}

// RunOpponentTurn lets the computer shoot until its turn ends. On medium
// and hard a hit that does not sink earns another shot.
func (g *Game) RunOpponentTurn() ([]AttackOutcome, error) {
	if g.phase != GamePhaseInProgress {
		return nil, cerr.ErrGamePhase("attack", g.phase.String())
	}
	if g.turn != SideOpponent {
		return nil, cerr.ErrNotTurnForAttacker(SideOpponent.String())
	}

	outcomes := make([]AttackOutcome, 0, 1)
	for {
		target, err := g.targeter.NextTarget(g.player.grid)
		if err != nil {
			return outcomes, err
		}

		outcome, result, err := g.attack(SideOpponent, target)
		if err != nil {
			return outcomes, err
		}
		g.targeter.Observe(target, result)
		outcomes = append(outcomes, outcome)

		if g.phase != GamePhaseInProgress {
			break
		}
		if result.Hit && !result.Sunk && g.difficulty != GameDifficultyEasy {
			continue
		}
		g.turn = SidePlayer
		break
	}
	return outcomes, nil
}

func (g *Game) attack(attacker Side, c Coordinates) (AttackOutcome, AttackResult, error) {
	offence := g.FetchPlayer(attacker)
	defence := g.FetchPlayer(attacker.other())

	result, err := ResolveAttack(defence.grid, defence.fleet, c)
	if err != nil {
		return AttackOutcome{}, AttackResult{}, err
	}

	outcome := AttackOutcome{Coordinates: c, Hit: result.Hit}
	if result.Hit {
		offence.hits++
	}
	if result.Sunk {
		outcome.SunkShipName = result.Ship.Name()
		outcome.SunkShipCells = result.Ship.Cells()
	}

	// Only the defender can have lost on this shot, so the attacker's
	// win stands even if both fleets were somehow sunk.
	if CheckWin(defence.fleet) {
		g.phase = GamePhaseFinished
		g.winner = attacker
		outcome.GameWon = true
	}

	for _, observer := range g.observers {
		observer.OnAttack(attacker, outcome)
	}
	return outcome, result, nil
}

func (g *Game) Status() GameStatus {
	return GameStatus{
		Phase:                  g.phase,
		Turn:                   g.turn,
		Difficulty:             g.difficulty,
		PlayerShipsRemaining:   g.player.fleet.Remaining(),
		OpponentShipsRemaining: g.opponent.fleet.Remaining(),
		PlayerHits:             g.player.hits,
		OpponentHits:           g.opponent.hits,
		Winner:                 g.winner,
	}
}

// Reset starts over from setup with empty boards, keeping the
// configuration and difficulty.
func (g *Game) Reset() {
	g.player.reset()
	g.opponent.reset()
	g.targeter.Reset()
	g.phase = GamePhaseSetup
	g.turn = SidePlayer
	g.winner = SideNone
}
