package battleship

import (
	"errors"
	"math/rand"
	"testing"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type testPlacement struct {
	row, col    int
	length      int
	orientation Orientation
	name        string
}

// referenceLayout is a legal hand made layout of the reference fleet.
var referenceLayout = []testPlacement{
	{0, 0, 5, OrientationHorizontal, ShipNameCarrier},
	{2, 0, 4, OrientationHorizontal, ShipNameBattleship},
	{4, 0, 3, OrientationHorizontal, ShipNameCruiser},
	{4, 4, 3, OrientationHorizontal, ShipNameCruiser},
	{6, 0, 2, OrientationHorizontal, ShipNameDestroyer},
	{6, 3, 2, OrientationHorizontal, ShipNameDestroyer},
	{6, 6, 2, OrientationHorizontal, ShipNameDestroyer},
	{8, 0, 1, OrientationHorizontal, ShipNameBoat},
	{8, 2, 1, OrientationHorizontal, ShipNameBoat},
	{8, 4, 1, OrientationHorizontal, ShipNameBoat},
	{8, 6, 1, OrientationHorizontal, ShipNameBoat},
}

var referenceShips, referenceCells = FleetSize(ReferenceFleet())

func newTestGame(t *testing.T, difficulty uint8, seed int64, optFuncs ...GameOption) *Game {
	t.Helper()
	opts := append([]GameOption{WithDifficulty(difficulty), WithRand(rand.New(rand.NewSource(seed)))}, optFuncs...)
	game, err := BeginSetup(DefaultGridSize, ReferenceFleet(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return game
}

func placeReferenceLayout(t *testing.T, game *Game) {
	t.Helper()
	for _, p := range referenceLayout {
		if err := game.ValidateAndPlace(NewCoordinates(p.row, p.col), p.length, p.orientation, p.name); err != nil {
			t.Fatalf("placing %s at (%d,%d): %v", p.name, p.row, p.col, err)
		}
	}
}

func startTestGame(t *testing.T, difficulty uint8, seed int64, optFuncs ...GameOption) *Game {
	t.Helper()
	game := newTestGame(t, difficulty, seed, optFuncs...)
	placeReferenceLayout(t, game)
	if err := game.StartGame(); err != nil {
		t.Fatal(err)
	}
	return game
}

// firstCell returns the first cell of the computer's grid in row-major
// order that is in state.
func firstCell(game *Game, state uint8) (Coordinates, bool) {
	for row, cells := range game.FetchPlayer(SideOpponent).Grid().Snapshot(false) {
		for col, s := range cells {
			if s == state {
				return NewCoordinates(row, col), true
			}
		}
	}
	return Coordinates{}, false
}

func TestBeginSetup(t *testing.T) {
	game := newTestGame(t, GameDifficultyHard, 1)

	if game.Phase() != GamePhaseSetup {
		t.Fatalf("expected setup phase\tgot: %s", game.Phase())
	}
	if game.GridSize() != DefaultGridSize || len(game.PlayerBoard()) != DefaultGridSize {
		t.Fatalf("expected grid size %d\tgot: %d", DefaultGridSize, game.GridSize())
	}
	if len(game.Uuid()) != 6 {
		t.Fatalf("expected 6 char uuid\tgot: %q", game.Uuid())
	}
	if len(game.RemainingShips()) != len(ReferenceFleet()) {
		t.Fatalf("expected every class to be remaining\tgot: %+v", game.RemainingShips())
	}

	if _, err := BeginSetup(0, ReferenceFleet()); err == nil {
		t.Fatal("expected error for zero grid size")
	}
	if _, err := BeginSetup(DefaultGridSize, nil); err == nil {
		t.Fatal("expected error for empty fleet configuration")
	}
	if _, err := NewGame(WithDifficulty(9)); !errors.Is(err, cerr.ErrInvalidDifficulty) {
		t.Fatalf("expected invalid difficulty\tgot: %v", err)
	}
}

func TestGamePlacement(t *testing.T) {
	game := newTestGame(t, GameDifficultyMedium, 1)

	if err := game.StartGame(); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state for empty fleet\tgot: %v", err)
	}

	tests := []struct {
		name        string
		placement   testPlacement
		expectedErr error
	}{
		{name: "carrier", placement: testPlacement{0, 0, 5, OrientationHorizontal, ShipNameCarrier}},
		{name: "second carrier", placement: testPlacement{5, 0, 5, OrientationHorizontal, ShipNameCarrier}, expectedErr: cerr.ErrPlacement},
		{name: "unknown class", placement: testPlacement{5, 0, 3, OrientationHorizontal, "Submarine"}, expectedErr: cerr.ErrPlacement},
		{name: "wrong length for class", placement: testPlacement{5, 0, 3, OrientationHorizontal, ShipNameDestroyer}, expectedErr: cerr.ErrPlacement},
		{name: "touching the carrier", placement: testPlacement{1, 5, 4, OrientationVertical, ShipNameBattleship}, expectedErr: cerr.ErrPlacement},
		{name: "battleship", placement: testPlacement{2, 0, 4, OrientationHorizontal, ShipNameBattleship}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := test.placement
			err := game.ValidateAndPlace(NewCoordinates(p.row, p.col), p.length, p.orientation, p.name)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error: %v\tgot: %v", test.expectedErr, err)
			}
		})
	}

	remaining := game.RemainingShips()
	if len(remaining) != 3 || remaining[0].Name != ShipNameCruiser {
		t.Fatalf("expected cruisers, destroyers and boats to be remaining\tgot: %+v", remaining)
	}

	err := game.StartGame()
	if !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state for incomplete fleet\tgot: %v", err)
	}
	if game.Phase() != GamePhaseSetup {
		t.Fatal("failed start must stay in setup")
	}
}

func TestGameRandomizeAndClearPlacement(t *testing.T) {
	game := newTestGame(t, GameDifficultyMedium, 3)
	placeReferenceLayout(t, game)

	if err := game.RandomizePlacement(); err != nil {
		t.Fatal(err)
	}
	if len(game.RemainingShips()) != 0 {
		t.Fatalf("expected complete fleet\tgot remaining: %+v", game.RemainingShips())
	}
	if game.FetchPlayer(SidePlayer).Fleet().Len() != referenceShips {
		t.Fatalf("expected randomize to replace the manual layout\tgot: %d ships", game.FetchPlayer(SidePlayer).Fleet().Len())
	}

	game.ClearPlacement()
	if len(game.RemainingShips()) != len(ReferenceFleet()) {
		t.Fatalf("expected every class to be remaining after clear\tgot: %+v", game.RemainingShips())
	}
	for _, row := range game.PlayerBoard() {
		for _, state := range row {
			if state != PositionStateEmpty {
				t.Fatal("expected empty board after clear")
			}
		}
	}

	if err := game.RandomizePlacement(); err != nil {
		t.Fatal(err)
	}
	if err := game.StartGame(); err != nil {
		t.Fatal(err)
	}

	game.ClearPlacement()
	if game.FetchPlayer(SidePlayer).Fleet().Len() != referenceShips {
		t.Fatal("clear must be ignored once the game started")
	}
	if err := game.RandomizePlacement(); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state\tgot: %v", err)
	}
	if err := game.ValidateAndPlace(NewCoordinates(9, 9), 1, OrientationHorizontal, ShipNameBoat); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state\tgot: %v", err)
	}
}

func TestStartGame(t *testing.T) {
	game := startTestGame(t, GameDifficultyHard, 5)

	if game.Phase() != GamePhaseInProgress || game.Turn() != SidePlayer {
		t.Fatalf("expected player to move in a running game\tgot: %s %s", game.Phase(), game.Turn())
	}

	opponentFleet := game.FetchPlayer(SideOpponent).Fleet()
	if err := opponentFleet.Validate(ReferenceFleet()); err != nil {
		t.Fatal(err)
	}
	assertNoShipsTouch(t, opponentFleet)

	for _, row := range game.OpponentBoard() {
		for _, state := range row {
			if state != PositionStateEmpty {
				t.Fatal("computer ships must be hidden from the player")
			}
		}
	}

	if err := game.StartGame(); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state on second start\tgot: %v", err)
	}
}

func TestShotsOutsideProgress(t *testing.T) {
	game := newTestGame(t, GameDifficultyMedium, 1)

	if _, err := game.SubmitPlayerShot(NewCoordinates(0, 0)); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state before start\tgot: %v", err)
	}
	if _, err := game.RunOpponentTurn(); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state before start\tgot: %v", err)
	}
}

func TestPlayerTurn(t *testing.T) {
	game := startTestGame(t, GameDifficultyMedium, 11)

	if _, err := game.RunOpponentTurn(); !errors.Is(err, cerr.ErrInvalidOperation) {
		t.Fatalf("expected invalid operation on player turn\tgot: %v", err)
	}
	if _, err := game.SubmitPlayerShot(NewCoordinates(10, 0)); !errors.Is(err, cerr.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds\tgot: %v", err)
	}

	var carrier *Ship
	for _, ship := range game.FetchPlayer(SideOpponent).Fleet().Ships() {
		if ship.Name() == ShipNameCarrier {
			carrier = ship
		}
	}
	target := carrier.Cells()[0]

	outcome, err := game.SubmitPlayerShot(target)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Hit || outcome.SunkShipName != "" {
		t.Fatalf("expected plain hit\tgot: %+v", outcome)
	}
	if game.Turn() != SidePlayer {
		t.Fatal("hit without a sink keeps the turn")
	}
	if game.OpponentBoard()[target.Row][target.Col] != PositionStateHit {
		t.Fatal("hit must be visible on the masked board")
	}

	if _, err := game.SubmitPlayerShot(target); !errors.Is(err, cerr.ErrInvalidOperation) {
		t.Fatalf("expected invalid operation on reshoot\tgot: %v", err)
	}
	if game.Turn() != SidePlayer {
		t.Fatal("rejected shot must not pass the turn")
	}

	miss, _ := firstCell(game, PositionStateEmpty)
	outcome, err = game.SubmitPlayerShot(miss)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Hit {
		t.Fatalf("expected miss at %+v\tgot: %+v", miss, outcome)
	}
	if game.Turn() != SideOpponent {
		t.Fatal("miss passes the turn")
	}
	if _, err := game.SubmitPlayerShot(NewCoordinates(9, 9)); !errors.Is(err, cerr.ErrInvalidOperation) {
		t.Fatalf("expected invalid operation on computer turn\tgot: %v", err)
	}

	if status := game.Status(); status.PlayerHits != 1 || status.OpponentShipsRemaining != referenceShips {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestEasyOpponentShootsOnce(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		game := startTestGame(t, GameDifficultyEasy, seed)

		for i := 0; i < 5 && !game.IsFinished(); i++ {
			miss, _ := firstCell(game, PositionStateEmpty)
			if _, err := game.SubmitPlayerShot(miss); err != nil {
				t.Fatal(err)
			}

			outcomes, err := game.RunOpponentTurn()
			if err != nil {
				t.Fatal(err)
			}
			if len(outcomes) != 1 {
				t.Fatalf("seed %d: expected one shot on easy\tgot: %d", seed, len(outcomes))
			}
			if game.Turn() != SidePlayer {
				t.Fatalf("seed %d: expected turn back to the player", seed)
			}
			if memory := game.TargeterMemory(); memory.HuntingMode || memory.LastHit != nil {
				t.Fatalf("seed %d: easy must not hunt\tgot: %+v", seed, memory)
			}
		}
	}
}

// Plays whole games and checks how the computer chains its shots.
func TestOpponentTurnChaining(t *testing.T) {
	for _, difficulty := range []uint8{GameDifficultyMedium, GameDifficultyHard} {
		for seed := int64(1); seed <= 10; seed++ {
			game := startTestGame(t, difficulty, seed)
			opponentShots := 0

			for step := 0; !game.IsFinished(); step++ {
				if step > 400 {
					t.Fatalf("%s seed %d: game did not finish", DifficultyString(difficulty), seed)
				}

				if game.Turn() == SidePlayer {
					target, ok := firstCell(game, PositionStateEmpty)
					if !ok {
						target, _ = firstCell(game, PositionStateOccupied)
					}
					if _, err := game.SubmitPlayerShot(target); err != nil {
						t.Fatal(err)
					}
					continue
				}

				outcomes, err := game.RunOpponentTurn()
				if err != nil {
					t.Fatal(err)
				}
				if len(outcomes) == 0 {
					t.Fatal("computer turn must fire at least once")
				}
				opponentShots += len(outcomes)

				for i, outcome := range outcomes[:len(outcomes)-1] {
					if !outcome.Hit || outcome.SunkShipName != "" || outcome.GameWon {
						t.Fatalf("%s seed %d: shot %d ended the chain early: %+v", DifficultyString(difficulty), seed, i, outcome)
					}
				}

				last := outcomes[len(outcomes)-1]
				if !last.GameWon && last.Hit && last.SunkShipName == "" {
					t.Fatalf("%s seed %d: chain stopped on a plain hit: %+v", DifficultyString(difficulty), seed, last)
				}
				if last.SunkShipName != "" {
					if len(last.SunkShipCells) == 0 {
						t.Fatal("sunk outcome must carry the ship cells")
					}
					if memory := game.TargeterMemory(); memory.HuntingMode || memory.LastHit != nil || len(memory.HuntDirections) != 0 {
						t.Fatalf("expected hunt to reset after a sink\tgot: %+v", memory)
					}
				}
				if !game.IsFinished() && game.Turn() != SidePlayer {
					t.Fatal("expected turn back to the player")
				}
			}

			if len(game.TargeterMemory().ShotHistory) != opponentShots {
				t.Fatalf("expected %d shots in history\tgot: %d", opponentShots, len(game.TargeterMemory().ShotHistory))
			}

			status := game.Status()
			if status.Phase != GamePhaseFinished || status.Winner == SideNone {
				t.Fatalf("expected a winner\tgot: %+v", status)
			}
			if status.Winner == SidePlayer && status.OpponentShipsRemaining != 0 {
				t.Fatalf("player won with computer ships afloat: %+v", status)
			}
			if status.Winner == SideOpponent && (status.PlayerShipsRemaining != 0 || status.OpponentHits != referenceCells) {
				t.Fatalf("computer won with player ships afloat: %+v", status)
			}
		}
	}
}

func TestPlayerWinsAndReset(t *testing.T) {
	attacks := map[Side]int{}
	observer := AttackObserverFunc(func(attacker Side, outcome AttackOutcome) {
		attacks[attacker]++
	})
	game := startTestGame(t, GameDifficultyEasy, 42, WithObserver(observer))

	opponentShots := 0
	var last AttackOutcome
	for _, ship := range game.FetchPlayer(SideOpponent).Fleet().Ships() {
		for _, c := range ship.Cells() {
			if game.Turn() == SideOpponent {
				outcomes, err := game.RunOpponentTurn()
				if err != nil {
					t.Fatal(err)
				}
				opponentShots += len(outcomes)
			}

			outcome, err := game.SubmitPlayerShot(c)
			if err != nil {
				t.Fatal(err)
			}
			last = outcome
		}
	}

	if !last.GameWon || last.SunkShipName == "" {
		t.Fatalf("expected last shot to sink and win\tgot: %+v", last)
	}
	if game.Phase() != GamePhaseFinished || game.Winner() != SidePlayer {
		t.Fatalf("expected player to win\tgot: %s %s", game.Phase(), game.Winner())
	}

	status := game.Status()
	if status.PlayerHits != referenceCells || status.OpponentShipsRemaining != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if attacks[SidePlayer] != referenceCells || attacks[SideOpponent] != opponentShots {
		t.Fatalf("expected observer to see every shot\tgot: %+v", attacks)
	}

	if _, err := game.SubmitPlayerShot(NewCoordinates(9, 9)); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state after the game\tgot: %v", err)
	}
	if _, err := game.RunOpponentTurn(); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state after the game\tgot: %v", err)
	}

	game.Reset()
	status = game.Status()
	if status.Phase != GamePhaseSetup || status.Winner != SideNone || status.PlayerHits != 0 || status.OpponentHits != 0 {
		t.Fatalf("expected fresh status after reset\tgot: %+v", status)
	}
	if len(game.RemainingShips()) != len(ReferenceFleet()) {
		t.Fatal("expected empty fleet after reset")
	}
	if len(game.TargeterMemory().ShotHistory) != 0 {
		t.Fatal("expected targeter memory to be cleared")
	}
	if game.Difficulty() != GameDifficultyEasy {
		t.Fatal("reset must keep the difficulty")
	}

	placeReferenceLayout(t, game)
	if err := game.StartGame(); err != nil {
		t.Fatalf("expected rematch to start: %v", err)
	}
}

func TestSetDifficulty(t *testing.T) {
	game := newTestGame(t, GameDifficultyEasy, 1)

	if err := game.SetDifficulty(GameDifficultyHard); err != nil {
		t.Fatal(err)
	}
	if game.Difficulty() != GameDifficultyHard || game.Status().Difficulty != GameDifficultyHard {
		t.Fatal("expected hard difficulty")
	}
	if err := game.SetDifficulty(7); !errors.Is(err, cerr.ErrInvalidDifficulty) {
		t.Fatalf("expected invalid difficulty\tgot: %v", err)
	}

	placeReferenceLayout(t, game)
	if err := game.StartGame(); err != nil {
		t.Fatal(err)
	}
	if err := game.SetDifficulty(GameDifficultyEasy); !errors.Is(err, cerr.ErrInvalidState) {
		t.Fatalf("expected invalid state once started\tgot: %v", err)
	}
}
