//go:generate mockgen -source=sender.go -destination=sender_mock.go -package=relay
package relay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"inspectd/internal/app/errors"
	"inspectd/internal/config"
)

// Sender is the outbound link to the target WebSocket listener
type Sender interface {
	Connect(ctx context.Context) error
	Send(text string) error
	Connected() bool
	Close() error
}

type wsSender struct {
	target       string
	dialer       *websocket.Dialer
	writeTimeout time.Duration
	mu           sync.Mutex
	conn         *websocket.Conn
	connected    atomic.Bool
}

// NewSender creates a Sender dialing target, a ws:// or wss:// URL
func NewSender(cfg *config.Config) Sender {
	return &wsSender{
		target: cfg.Relay.Target,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.RelayDialTimeout,
		},
		writeTimeout: config.RelayWriteTimeout,
	}
}

func (s *wsSender) Connect(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.target, nil)
	if err != nil {
		return fmt.Errorf("%w %s: %w", errors.ErrFailedToConnect, s.target, err)
	}

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}

	s.conn = conn
	s.connected.Store(true)
	s.mu.Unlock()

	go s.watch(conn)

	return nil
}

// watch reads from conn so control frames are handled and a closed peer is
// noticed. The listener never sends data messages.
func (s *wsSender) watch(conn *websocket.Conn) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			s.drop(conn)
			return
		}
	}
}

// drop forgets conn if it is still the current connection
func (s *wsSender) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == conn {
		s.conn.Close()
		s.conn = nil
		s.connected.Store(false)
	}
}

func (s *wsSender) Send(text string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return errors.ErrNotConnected
	}

	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		s.drop(conn)
		return fmt.Errorf("%w: %w", errors.ErrFailedToSend, err)
	}

	return nil
}

func (s *wsSender) Connected() bool {
	return s.connected.Load()
}

// Close ends the connection with a normal closure
func (s *wsSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "relay stopping")
	s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(config.WebSocketCloseTimeout))

	err := s.conn.Close()
	s.conn = nil
	s.connected.Store(false)

	return err
}
