package connection

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	maxWsRetries  uint8         = 2
	backOffFactor time.Duration = time.Second * 2
)

type ConnectionHandler interface {
	reconnectionAfterAbnormalClosure(conn *websocket.Conn) error
	handleReadFromConnErr(err error, retries uint8) uint8
	writeJSONWithRetry(msg any) error
	onConnErr(err error) uint8
}

// Session is one websocket client and the single game it plays against
// the computer. The conn is swapped when the client reconnects after an
// abnormal closure, so it is only reached through Conn.
type Session struct {
	id   string
	game *mb.Game

	mu                     sync.RWMutex
	conn                   *websocket.Conn
	lastSeen               time.Time
	awaitingReconnection   bool
	reconnectionSignalChan chan struct{}
}

var _ ConnectionHandler = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		id:                     id,
		conn:                   conn,
		lastSeen:               time.Now(),
		reconnectionSignalChan: make(chan struct{}),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

func (s *Session) Game() *mb.Game {
	return s.game
}

func (s *Session) SetGame(game *mb.Game) {
	s.game = game
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastSeen)
}

func (s *Session) remoteAddr() string {
	return s.Conn().RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Println("timeout error:", err)
		return ConnLoopRetry
	}

	switch {
	case websocket.IsCloseError(err, websocket.CloseTryAgainLater):
		log.Println("high server load/traffic error:", err)
		return ConnLoopRetry

	// mobile clients going to background end up here
	case websocket.IsCloseError(err, websocket.CloseAbnormalClosure):
		log.Println("abnormal closure error:", err)
		return ConnLoopAbnormalClosureRetry

	case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
		log.Println("close error:", err)
		return ConnLoopBreak

	// Clients sending binary or malformed frames are most likely not ours
	case websocket.IsCloseError(err,
		websocket.CloseProtocolError,
		websocket.CloseInternalServerErr,
		websocket.CloseTLSHandshake,
		websocket.CloseMandatoryExtension,
		websocket.CloseInvalidFramePayloadData,
		websocket.CloseUnsupportedData,
		websocket.CloseMessageTooBig,
		websocket.ClosePolicyViolation,
		websocket.CloseServiceRestart,
		websocket.CloseNoStatusReceived,
	):
		log.Println("critical error:", err)
		return ConnLoopBreak

	default:
		log.Println("unexpected error:", err)
		return ConnLoopBreak
	}
}

// writeJSONWithRetry writes msg to the current conn of the session and
// retries transient failures with a linear back-off.
func (s *Session) writeJSONWithRetry(msg any) error {
	var retries uint8

	for {
		err := s.Conn().WriteJSON(msg)
		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries >= maxWsRetries {
				log.Printf("max retries reached for writing to ws [%s]: %s\n", s.remoteAddr(), err)
				return NewConnErr(ConnLoopBreak).AddDesc(err.Error())
			}
			retries++
			log.Printf("writing json failed to ws [%s]; retrying... (retry no. %d)\n", s.remoteAddr(), retries)
			time.Sleep(time.Duration(retries) * backOffFactor)

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry).AddDesc(err.Error())

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
		}
	}
}

func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopAbnormalClosureRetry:
		return ConnLoopAbnormalClosureRetry

	case ConnLoopRetry:
		if retries >= maxWsRetries {
			return ConnLoopBreak
		}
		log.Printf("failed to read from ws conn [%s]; retrying... (retry no. %d)\n", s.remoteAddr(), retries+1)
		time.Sleep(time.Duration(retries+1) * backOffFactor)
		return ConnLoopContinue

	default:
		log.Printf("break ws conn loop [%s] due to: %s\n", s.remoteAddr(), err)
		return ConnLoopBreak
	}
}

// awaitReconnection opens the reconnection window and returns the channel
// closed once a new conn is attached.
func (s *Session) awaitReconnection() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingReconnection = true
	s.reconnectionSignalChan = make(chan struct{})
	return s.reconnectionSignalChan
}

// stopAwaitingReconnection closes the reconnection window and reports
// whether it was still open.
func (s *Session) stopAwaitingReconnection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAwaiting := s.awaitingReconnection
	s.awaitingReconnection = false
	return wasAwaiting
}

func (s *Session) reconnectionAfterAbnormalClosure(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.awaitingReconnection {
		return NewConnErr(ConnLoopBreak).AddDesc("session is not waiting for a reconnection: " + s.id)
	}

	_ = s.conn.Close()
	s.conn = conn
	s.lastSeen = time.Now()
	s.awaitingReconnection = false
	close(s.reconnectionSignalChan)
	return nil
}
