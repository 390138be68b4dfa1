package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	defaultGracePeriod     = time.Minute * 2
	defaultCleanupInterval = time.Minute * 20

	// Returned with an error by FetchCodeFromMsg
	invalidCode uint8 = 255
)

var ErrSignalAbsent = errors.New("incoming req payload must contain 'code' field")

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context)

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	HandleAbnormalClosureSession(session *Session) error

	WriteToSessionConn(session *Session, msg any) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	FetchCodeFromMsg(payload []byte) (uint8, error)
	Len() int
}

type BattleshipSessionManager struct {
	gracePeriod     time.Duration
	cleanupInterval time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

type SessionManagerOption func(*BattleshipSessionManager)

// WithGracePeriod sets how long a session with a game waits for its
// client to come back after an abnormal closure.
func WithGracePeriod(d time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		bsm.gracePeriod = d
	}
}

func WithCleanupInterval(d time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		bsm.cleanupInterval = d
	}
}

func NewBattleshipSessionManager(optFuncs ...SessionManagerOption) *BattleshipSessionManager {
	bsm := &BattleshipSessionManager{
		sessions:        make(map[string]*Session, 10),
		gracePeriod:     defaultGracePeriod,
		cleanupInterval: defaultCleanupInterval,
	}
	for _, opt := range optFuncs {
		opt(bsm)
	}
	return bsm
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.NewString()))
	session := NewSession(sessionId, conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs || session == nil {
		return nil, cerr.ErrSessionNotExists(sessionId)
	}
	return session, nil
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()
}

func (bsm *BattleshipSessionManager) Len() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

// ReconnectSession attaches conn to a session that lost its connection
// and is still inside its grace period.
func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return err
	}
	return session.reconnectionAfterAbnormalClosure(conn)
}

// CleanupPeriodically closes the connections of sessions that have been
// silent for longer than the cleanup interval. Closing the conn ends the
// session loop, which releases the session and its game.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			bsm.mu.Lock()
			for id, session := range bsm.sessions {
				if session.idleFor() > bsm.cleanupInterval {
					_ = session.Conn().Close()
					delete(bsm.sessions, id)
					log.Printf("removed stale session: %s\n", id)
				}
			}
			bsm.mu.Unlock()
		}
	}
}

// HandleAbnormalClosureSession waits for the client of s to come back
// after an abnormal closure. A session without a game has nothing worth
// resuming and ends right away.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	if s.Game() == nil {
		return NewConnErr(ConnLoopBreak).AddDesc("no game attached to session: " + s.id)
	}

	reconnected := s.awaitReconnection()
	log.Printf("session %s lost its connection; grace period: %s\n", s.id, bsm.gracePeriod)

	timer := time.NewTimer(bsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		// a reconnection may have landed right as the timer fired
		if s.stopAwaitingReconnection() {
			log.Printf("session terminated: %s\n", s.id)
			return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)
		}

	case <-reconnected:
	}

	log.Printf("player reconnected, session: %s\n", s.id)
	msg := NewMessage[RespSessionId](CodeSessionID)
	msg.AddPayload(RespSessionId{SessionID: s.id})
	return s.writeJSONWithRetry(msg)
}

// WriteToSessionConn delivers msg to the client of session. After an
// abnormal closure the message is delivered to the reconnected client.
func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg any) error {
	for {
		err := session.writeJSONWithRetry(msg)
		if err == nil {
			return nil
		}

		var connErr ConnErr
		if !errors.As(err, &connErr) || connErr.Code() != ConnLoopAbnormalClosureRetry {
			return err
		}
		if err := bsm.HandleAbnormalClosureSession(session); err != nil {
			return err
		}
	}
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		messageType, payload, err := session.Conn().ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.HandleAbnormalClosureSession(session); err != nil {
				return -1, nil, err
			}
			retries = 0

		default:
			return -1, nil, err
		}
	}
}

// FetchCodeFromMsg extracts the code of an incoming frame. Frames that
// are not JSON objects or carry no code yield ErrSignalAbsent.
func (bsm *BattleshipSessionManager) FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal struct {
		Code *uint8 `json:"code"`
	}

	if err := json.Unmarshal(payload, &signal); err != nil {
		return invalidCode, errors.Join(ErrSignalAbsent, err)
	}
	if signal.Code == nil {
		return invalidCode, ErrSignalAbsent
	}
	return *signal.Code, nil
}
