// Package session runs the echo loop for a single upgraded WebSocket peer.
package session

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/logging"
)

// Time allowed to write an echo back to the peer
const writeWait = 10 * time.Second

// State is the lifecycle state of a session.
type State int32

const (
	// StateOpen is the initial state; messages are echoed.
	StateOpen State = iota
	// StateClosed is terminal; every later event is ignored.
	StateClosed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Peer is the message-level view of an upgraded connection.
// *websocket.Conn satisfies it.
type Peer interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
	RemoteAddr() net.Addr
}

// Recorder receives the counter updates a session produces.
type Recorder interface {
	RecordMessageReceived()
	RecordEchoFailure()
	RecordConnectionClosed()
}

// Option configures a Session.
type Option func(*Session)

// WithOnClose registers a hook that runs once, after the session closes.
func WithOnClose(fn func(*Session)) Option {
	return func(s *Session) {
		s.onClose = fn
	}
}

// Session is one Open→Closed echo state machine. The pointer is the identity.
type Session struct {
	peer       Peer
	rec        Recorder
	remoteAddr string
	state      atomic.Int32
	onClose    func(*Session)
}

// New creates an open session for peer
func New(peer Peer, rec Recorder, opts ...Option) *Session {
	s := &Session{
		peer: peer,
		rec:  rec,
	}
	if addr := peer.RemoteAddr(); addr != nil {
		s.remoteAddr = addr.String()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// RemoteAddr returns the peer address captured at creation
func (s *Session) RemoteAddr() string {
	return s.remoteAddr
}

// HandleMessage counts an inbound message and echoes it with the same type.
// A failed write is recorded but does not close the session. Returns false
// if the session was already closed and the event was dropped.
func (s *Session) HandleMessage(messageType int, payload []byte) bool {
	if s.State() == StateClosed {
		return false
	}

	s.rec.RecordMessageReceived()
	logging.LogWebSocketMessage(s.remoteAddr, "received", messageType, payload)

	if err := s.echo(messageType, payload); err != nil {
		s.rec.RecordEchoFailure()
		logging.Warn("Echo failed",
			zap.String("remote_addr", s.remoteAddr),
			zap.String("message_type", logging.MessageTypeName(messageType)),
			zap.Int("length", len(payload)),
			zap.Error(err),
		)
		return true
	}

	logging.LogWebSocketMessage(s.remoteAddr, "sent", messageType, payload)
	return true
}

func (s *Session) echo(messageType int, payload []byte) error {
	if err := s.peer.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.peer.WriteMessage(messageType, payload)
}

// Close moves the session to Closed. Only the first call counts the close,
// releases the peer and runs the on-close hook; it reports whether it did.
func (s *Session) Close() bool {
	if !s.state.CompareAndSwap(int32(StateOpen), int32(StateClosed)) {
		return false
	}

	s.rec.RecordConnectionClosed()
	_ = s.peer.Close()
	logging.LogConnection(s.remoteAddr, "websocket_closed")

	if s.onClose != nil {
		s.onClose(s)
	}
	return true
}

// Run reads messages in arrival order and echoes each one until the peer
// or transport goes away, then closes the session.
func (s *Session) Run() {
	defer s.Close()

	for {
		messageType, payload, err := s.peer.ReadMessage()
		if err != nil {
			logReadEnd(s.remoteAddr, err)
			return
		}
		if !s.HandleMessage(messageType, payload) {
			return
		}
	}
}

func logReadEnd(remoteAddr string, err error) {
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		logging.Debug("Peer sent close frame",
			zap.String("remote_addr", remoteAddr),
			zap.Int("code", closeErr.Code),
			zap.String("reason", closeErr.Text),
		)
	case errors.Is(err, net.ErrClosed):
		logging.Debug("Connection closed locally",
			zap.String("remote_addr", remoteAddr),
		)
	default:
		logging.Debug("Connection closed or error reading message",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}
