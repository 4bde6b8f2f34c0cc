package tap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Server rebroadcasts received packets to local tail clients over a Unix
// socket, one JSON document per line
type Server interface {
	Start(ctx context.Context, listeners []string) error
	Stop() error
	Broadcast(transport, connID string, p packet.Packet)
	SocketPath() string
	Dropped() int64
}

type server struct {
	socketPath string
	bufferSize int
	listeners  []string
	listener   net.Listener
	hub        Hub
	running    atomic.Bool
	wg         sync.WaitGroup
	connID     atomic.Int64
	cancel     context.CancelFunc
	log        logger.Logger
}

// NewServer creates the tap server
func NewServer(cfg *config.Config, log logger.Logger) Server {
	return &server{
		socketPath: SocketPath(cfg.Tap.Dir, cfg.Tap.Name),
		bufferSize: cfg.Tap.Buffer,
		hub:        NewHub(cfg.Tap.Buffer),
		log:        log.WithComponent("TAP"),
	}
}

// SocketPath returns the socket path of the tap called name
func SocketPath(dir, name string) string {
	return filepath.Join(dir, config.TapPrefix+name+config.TapSuffix)
}

func (s *server) SocketPath() string {
	return s.socketPath
}

func (s *server) Dropped() int64 {
	return s.hub.Dropped()
}

// Start listens on the tap socket. listeners names the transports reported
// to clients in the status message.
func (s *server) Start(ctx context.Context, listeners []string) error {
	if err := s.cleanupStaleSocket(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToCleanupSocket, err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", errors.ErrFailedToListen, s.socketPath, err)
	}

	s.listener = ln
	s.listeners = listeners
	s.running.Store(true)
	s.log.Info().Msgf("Tap listening on %s", s.socketPath)

	serverCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)

	go func() {
		defer s.wg.Done()

		s.hub.Run(serverCtx)
	}()

	go func() {
		defer s.wg.Done()

		s.acceptConnections(serverCtx)
	}()

	return nil
}

func (s *server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)

	if s.cancel != nil {
		s.cancel()
	}

	s.listener.Close()
	s.wg.Wait()

	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Msgf("Failed to remove socket file: %s", s.socketPath)
	}

	s.log.Info().Msg("Tap stopped")

	return nil
}

func (s *server) Broadcast(transport, connID string, p packet.Packet) {
	if !s.running.Load() {
		return
	}

	s.hub.Broadcast(PacketMessage{
		Type:      MessagePacket,
		Transport: transport,
		ConnID:    connID,
		Packet:    packet.Summarize(p),
	})
}

func (s *server) cleanupStaleSocket() error {
	if _, err := os.Stat(s.socketPath); os.IsNotExist(err) {
		return nil
	}

	conn, err := net.DialTimeout("unix", s.socketPath, config.PipeDialTimeout)
	if err == nil {
		conn.Close()

		return fmt.Errorf("%w: %s", errors.ErrSocketAlreadyInUse, s.socketPath)
	}

	s.log.Info().Msgf("Removing stale socket: %s", s.socketPath)

	return os.Remove(s.socketPath)
}

func (s *server) acceptConnections(ctx context.Context) {
	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && !errors.Is(err, net.ErrClosed) {
				s.log.Error().Err(err).Msg("Failed to accept connection")
				continue
			}

			return
		}

		s.wg.Add(1)

		go func(c net.Conn) {
			defer s.wg.Done()

			s.handleConnection(ctx, c)
		}(conn)
	}
}

func (s *server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	clientID := fmt.Sprintf("tail-%d", s.connID.Add(1))
	client := NewClientConn(clientID, s.bufferSize)

	s.log.Debug().Msgf("Client connected: %s", clientID)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		s.log.Error().Err(err).Msgf("Failed to read from client %s", clientID)
		return
	}

	var req SubscribeRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.Error().Err(err).Msgf("Failed to parse subscribe request from %s", clientID)
		return
	}

	if req.Type != MessageSubscribe {
		s.log.Error().Msgf("Expected subscribe message from %s, got %s", clientID, req.Type)
		return
	}

	if err := client.SetSubscription(req.Apps); err != nil {
		s.log.Error().Err(err).Msgf("Rejected subscription from %s", clientID)
		return
	}

	if err := s.write(conn, StatusMessage{Type: MessageStatus, Version: config.Version, Listeners: s.listeners}); err != nil {
		return
	}

	s.hub.Register(client)
	defer s.hub.Unregister(client)

	s.log.Debug().Msgf("Client %s subscribed to apps: %v", clientID, req.Apps)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.SendChan:
			if !ok {
				return
			}

			if err := s.write(conn, msg); err != nil {
				s.log.Debug().Err(err).Msgf("Client %s disconnected", clientID)
				return
			}
		}
	}
}

func (s *server) write(conn net.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToMarshal, err)
	}

	_, err = conn.Write(append(data, '\n'))

	return err
}
