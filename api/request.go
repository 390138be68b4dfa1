package api

import (
	"encoding/json"
	"errors"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

type RequestHandler interface {
	HandleCreateGame(gameManager mb.GameManager, optFuncs ...mb.GameOption) (*mb.Game, mc.Message[mc.RespCreateGame])
	HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlaceShip]
	HandleRandomPlacement(game *mb.Game) mc.Message[mc.RespPlayerBoard]
	HandleClearPlacement(game *mb.Game) mc.Message[mc.RespPlayerBoard]
	HandleSetDifficulty(game *mb.Game) mc.Message[mc.NoPayload]
	HandleStartGame(game *mb.Game) mc.Message[mc.NoPayload]
	HandleAttack(game *mb.Game) mc.Message[mc.RespAttack]
	HandleOpponentTurn(game *mb.Game) mc.Message[mc.RespOpponentAttack]
	HandleEndGame(game *mb.Game) mc.Message[mc.RespEndGame]
	HandleStatus(game *mb.Game) mc.Message[mc.RespStatus]
	HandleRematch(game *mb.Game) mc.Message[mc.NoPayload]
}

// Request is one incoming frame of a session. Every Handle method
// answers with the message to send back; failures travel in its Error.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

// errorMessage turns an engine error into a hint for the client.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, cerr.ErrOutOfBounds):
		return "coordinates are outside the grid"
	case errors.Is(err, cerr.ErrPlacement):
		return "ship cannot be placed there"
	case errors.Is(err, cerr.ErrInvalidOperation):
		return "move is not allowed right now"
	case errors.Is(err, cerr.ErrInvalidDifficulty):
		return "difficulty must be 0 (easy), 1 (medium) or 2 (hard)"
	case errors.Is(err, cerr.ErrInvalidState):
		return "game is not in the right phase for this request"
	default:
		return "request could not be processed"
	}
}

func addErr[T any](msg *mc.Message[T], err error) {
	msg.AddError(err.Error(), errorMessage(err))
}

func (r Request) unmarshal(v any) error {
	return json.Unmarshal(r.payload, v)
}

func (r Request) HandleCreateGame(gameManager mb.GameManager, optFuncs ...mb.GameOption) (*mb.Game, mc.Message[mc.RespCreateGame]) {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	var req mc.Message[mc.ReqCreateGame]
	if err := r.unmarshal(&req); err != nil {
		resp.AddError(err.Error(), "invalid create game payload")
		return nil, resp
	}

	difficulty := mb.GameDifficultyMedium
	if req.Payload.GameDifficulty != nil {
		difficulty = *req.Payload.GameDifficulty
	}

	game, err := gameManager.CreateGame(difficulty, optFuncs...)
	if err != nil {
		addErr(&resp, err)
		return nil, resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameUuid: game.Uuid(),
		GridSize: game.GridSize(),
		Ships:    game.ShipSpecs(),
	})
	return game, resp
}

func (r Request) HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	var req mc.Message[mc.ReqPlaceShip]
	if err := r.unmarshal(&req); err != nil {
		resp.AddError(err.Error(), "invalid place ship payload")
		return resp
	}

	p := req.Payload
	if !p.Orientation.IsValid() {
		addErr(&resp, cerr.ErrInvalidOrientation(uint8(p.Orientation)))
		return resp
	}
	if err := game.ValidateAndPlace(mb.NewCoordinates(p.Row, p.Col), p.Length, p.Orientation, p.Name); err != nil {
		addErr(&resp, err)
		return resp
	}

	resp.AddPayload(mc.RespPlaceShip{RemainingShips: game.RemainingShips()})
	return resp
}

func (r Request) HandleRandomPlacement(game *mb.Game) mc.Message[mc.RespPlayerBoard] {
	resp := mc.NewMessage[mc.RespPlayerBoard](mc.CodeRandomPlacement)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	if err := game.RandomizePlacement(); err != nil {
		addErr(&resp, err)
		return resp
	}

	resp.AddPayload(mc.RespPlayerBoard{PlayerBoard: game.PlayerBoard(), RemainingShips: game.RemainingShips()})
	return resp
}

func (r Request) HandleClearPlacement(game *mb.Game) mc.Message[mc.RespPlayerBoard] {
	resp := mc.NewMessage[mc.RespPlayerBoard](mc.CodeClearPlacement)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}
	if game.Phase() != mb.GamePhaseSetup {
		addErr(&resp, cerr.ErrGamePhase("clear placement", game.Phase().String()))
		return resp
	}

	game.ClearPlacement()
	resp.AddPayload(mc.RespPlayerBoard{PlayerBoard: game.PlayerBoard(), RemainingShips: game.RemainingShips()})
	return resp
}

func (r Request) HandleSetDifficulty(game *mb.Game) mc.Message[mc.NoPayload] {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeSetDifficulty)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	var req mc.Message[mc.ReqSetDifficulty]
	if err := r.unmarshal(&req); err != nil {
		resp.AddError(err.Error(), "invalid set difficulty payload")
		return resp
	}
	if err := game.SetDifficulty(req.Payload.GameDifficulty); err != nil {
		addErr(&resp, err)
	}
	return resp
}

func (r Request) HandleStartGame(game *mb.Game) mc.Message[mc.NoPayload] {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeStartGame)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	if err := game.StartGame(); err != nil {
		addErr(&resp, err)
	}
	return resp
}

func (r Request) HandleAttack(game *mb.Game) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	var req mc.Message[mc.ReqAttack]
	if err := r.unmarshal(&req); err != nil {
		resp.AddError(err.Error(), "invalid attack payload")
		return resp
	}

	outcome, err := game.SubmitPlayerShot(mb.NewCoordinates(req.Payload.Row, req.Payload.Col))
	if err != nil {
		addErr(&resp, err)
		return resp
	}

	resp.AddPayload(mc.RespAttack{
		Outcome: outcome,
		IsTurn:  !game.IsFinished() && game.Turn() == mb.SidePlayer,
	})
	return resp
}

// HandleOpponentTurn plays the whole turn of the computer. It has no
// incoming frame of its own; the server runs it once the player's turn
// is over.
func (r Request) HandleOpponentTurn(game *mb.Game) mc.Message[mc.RespOpponentAttack] {
	resp := mc.NewMessage[mc.RespOpponentAttack](mc.CodeOpponentAttack)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	outcomes, err := game.RunOpponentTurn()
	if err != nil {
		addErr(&resp, err)
		return resp
	}

	resp.AddPayload(mc.RespOpponentAttack{
		Outcomes: outcomes,
		IsTurn:   !game.IsFinished() && game.Turn() == mb.SidePlayer,
	})
	return resp
}

func (r Request) HandleEndGame(game *mb.Game) mc.Message[mc.RespEndGame] {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}
	if !game.IsFinished() {
		addErr(&resp, cerr.ErrGamePhase("end game", game.Phase().String()))
		return resp
	}

	resp.AddPayload(mc.RespEndGame{Winner: game.Winner().String()})
	return resp
}

func (r Request) HandleStatus(game *mb.Game) mc.Message[mc.RespStatus] {
	resp := mc.NewMessage[mc.RespStatus](mc.CodeStatus)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	status := mc.NewRespStatus(game.Status())
	status.PlayerBoard = game.PlayerBoard()
	status.OpponentBoard = game.OpponentBoard()
	resp.AddPayload(status)
	return resp
}

func (r Request) HandleRematch(game *mb.Game) mc.Message[mc.NoPayload] {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeRematch)
	if game == nil {
		addErr(&resp, cerr.ErrGameIsNil())
		return resp
	}

	game.Reset()
	return resp
}
