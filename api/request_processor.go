package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
	"github.com/sqlc-dev/pqtype"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{
		HandshakeTimeout: time.Second * 5,

		// a full board snapshot fits in one buffer
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	db             sqlc.DbManager
	ipnet          net.IPNet
	gameOptions    []mb.GameOption
}

type RequestProcessorOption func(*RequestProcessor)

// WithGameOptions applies optFuncs to every game created through the
// processor, e.g. a fixed grid size or a seeded random source.
func WithGameOptions(optFuncs ...mb.GameOption) RequestProcessorOption {
	return func(rp *RequestProcessor) {
		rp.gameOptions = append(rp.gameOptions, optFuncs...)
	}
}

// NewRequestProcessor wires the websocket entry point. q may be nil, in
// which case analytics are not recorded.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	q sqlc.Querier,
	optFuncs ...RequestProcessorOption,
) RequestProcessor {
	rp := RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		db:             sqlc.NewDbManager(q),
		ipnet:          findServerIpNet(),
	}
	for _, opt := range optFuncs {
		opt(&rp)
	}
	return rp
}

// findServerIpNet returns the first IPv4 network of an interface that is
// up and not loopback, or 127.0.0.1/32 when there is none.
func findServerIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1).To4(), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Println("could not list network interfaces:", err)
		return loopback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			log.Println(err)
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() {
				return net.IPNet{IP: ip4, Mask: ipnet.Mask}
			}
		}
	}

	log.Println("no non-loopback ipv4 found; analytics keyed by 127.0.0.1")
	return loopback
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) serverInet() pqtype.Inet {
	return pqtype.Inet{IPNet: rp.ipnet, Valid: true}
}

// recordAnalytics runs one analytics write. Failures never stop a game.
func (rp RequestProcessor) recordAnalytics(record func(ctx context.Context, serverIpNet pqtype.Inet) error) {
	if !rp.db.Analytics.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := record(ctx, rp.serverInet()); err != nil {
		log.Println("analytics:", err)
	}
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	// The session loop is still alive and picks the new conn up
	default:
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			log.Printf("reconnection refused [%s]: %s\n", conn.RemoteAddr().String(), err)

			msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID)
			msg.AddError(err.Error(), "session cannot be resumed; connect without a session id")
			_ = conn.WriteJSON(msg)
			_ = conn.Close()
			return
		}
		log.Printf("session %s reconnected from %s\n", sessionIdQuery, conn.RemoteAddr().String())
	}
}

func (rp RequestProcessor) newGameOptions() []mb.GameOption {
	return append([]mb.GameOption(nil), rp.gameOptions...)
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if game := session.Game(); game != nil {
			rp.gameManager.TerminateGame(game.Uuid())
		}
		if conn := session.Conn(); conn != nil {
			_ = conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Printf("session terminated: %s\n", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError(err.Error(), "incoming req payload must contain 'code' field")
			if err := rp.sessionManager.WriteToSessionConn(session, msg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		req := NewRequest(payload)
		game := session.Game()

		switch code {
		// A session plays one game at a time; a new one replaces the old
		case mc.CodeCreateGame:
			newGame, respMsg := req.HandleCreateGame(rp.gameManager, rp.newGameOptions()...)
			if newGame != nil {
				if game != nil {
					rp.gameManager.TerminateGame(game.Uuid())
				}
				session.SetGame(newGame)
				rp.recordAnalytics(rp.db.Analytics.IncrementGamesCreatedCount)
			}
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		case mc.CodePlaceShip:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandlePlaceShip(game)); err != nil {
				break sessionLoop
			}

		case mc.CodeRandomPlacement:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandleRandomPlacement(game)); err != nil {
				break sessionLoop
			}

		case mc.CodeClearPlacement:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandleClearPlacement(game)); err != nil {
				break sessionLoop
			}

		case mc.CodeSetDifficulty:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandleSetDifficulty(game)); err != nil {
				break sessionLoop
			}

		case mc.CodeStartGame:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandleStartGame(game)); err != nil {
				break sessionLoop
			}

		// The player's shot is answered first. If the turn passed, the
		// computer plays right away and its shots follow in one frame.
		case mc.CodeAttack:
			respMsg := req.HandleAttack(game)
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}
			if respMsg.Error != nil {
				continue sessionLoop
			}

			if !game.IsFinished() && game.Turn() == mb.SideOpponent {
				if err := rp.sessionManager.WriteToSessionConn(session, req.HandleOpponentTurn(game)); err != nil {
					break sessionLoop
				}
			}

			if game.IsFinished() {
				playerWon := game.Winner() == mb.SidePlayer
				rp.recordAnalytics(func(ctx context.Context, serverIpNet pqtype.Inet) error {
					return rp.db.Analytics.IncrementWinsCount(ctx, serverIpNet, playerWon)
				})
				if err := rp.sessionManager.WriteToSessionConn(session, req.HandleEndGame(game)); err != nil {
					break sessionLoop
				}
			}

		case mc.CodeStatus:
			if err := rp.sessionManager.WriteToSessionConn(session, req.HandleStatus(game)); err != nil {
				break sessionLoop
			}

		case mc.CodeRematch:
			respMsg := req.HandleRematch(game)
			if respMsg.Error == nil {
				rp.recordAnalytics(rp.db.Analytics.IncrementRematchCalledCount)
			}
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal); err != nil {
				break sessionLoop
			}
		}
	}
}
