package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"inspectd/internal/app/bridge"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Status is the body served to plain HTTP requests
type Status struct {
	Listening bool `json:"listening"`
	Port      int  `json:"port"`
	Clients   int  `json:"clients"`
}

type wsListener struct {
	port       int
	maxPayload int
	grace      time.Duration
	upgrader   websocket.Upgrader
	events     subscribers
	clients    *registry
	mu         sync.Mutex // orders session admission against Stop
	running    atomic.Bool
	wg         sync.WaitGroup
	connID     atomic.Int64
	listener   net.Listener
	server     *http.Server
	metrics    metrics.Recorder
	log        logger.Logger
}

// NewWebSocket creates the WebSocket listener. Each text message is one JSON
// encoded packet.
func NewWebSocket(cfg *config.Config, log logger.Logger, rec metrics.Recorder) Listener {
	return &wsListener{
		port:       cfg.WebSocket.Port,
		maxPayload: cfg.Listener.MaxPayload,
		grace:      cfg.Listener.ShutdownGrace,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: newRegistry(),
		metrics: rec,
		log:     log.WithComponent("WEBSOCKET"),
	}
}

func (l *wsListener) Name() string {
	return TransportWebSocket
}

func (l *wsListener) Addr() string {
	if l.listener != nil {
		return l.listener.Addr().String()
	}

	return net.JoinHostPort("", strconv.Itoa(l.port))
}

func (l *wsListener) IsListening() bool {
	return l.running.Load()
}

func (l *wsListener) ClientCount() int {
	return l.clients.count()
}

func (l *wsListener) Subscribe(h Handlers) {
	l.events.add(h)
}

func (l *wsListener) Start(ctx context.Context) error {
	if l.running.Load() {
		return errors.ErrAlreadyListening
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(l.port)))
	if err != nil {
		return fmt.Errorf("%w on websocket port %d: %w", errors.ErrFailedToListen, l.port, err)
	}

	l.listener = ln
	l.server = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	l.mu.Lock()
	l.running.Store(true)
	l.mu.Unlock()

	l.log.Info().Msgf("Listening on %s", ln.Addr())

	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.log.Error().Err(err).Msg("HTTP server failed")
			l.events.reportError(err)
		}
	}()

	return nil
}

// Stop closes every session with a normal closure and then shuts the HTTP
// endpoint down
func (l *wsListener) Stop() error {
	l.mu.Lock()
	if !l.running.Load() {
		l.mu.Unlock()
		return nil
	}

	l.running.Store(false)
	l.mu.Unlock()

	l.clients.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), l.grace)
	defer cancel()

	err := l.server.Shutdown(ctx)

	l.wg.Wait()
	l.log.Info().Msg("Listener stopped")

	return err
}

// ServeHTTP upgrades WebSocket handshakes and answers anything else with the
// listener status
func (l *wsListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		l.serveSession(w, r)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(Status{
		Listening: l.running.Load(),
		Port:      l.boundPort(),
		Clients:   l.clients.count(),
	})
}

func (l *wsListener) boundPort() int {
	if l.listener != nil {
		if addr, ok := l.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}

	return l.port
}

// admit reserves a session slot unless the listener is stopping
func (l *wsListener) admit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running.Load() {
		return false
	}

	l.wg.Add(1)

	return true
}

// register adds a session to the registry unless Stop already closed it
func (l *wsListener) register(id string, s *wsSession) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running.Load() {
		return false
	}

	l.clients.add(id, s)

	return true
}

func (l *wsListener) serveSession(w http.ResponseWriter, r *http.Request) {
	if !l.admit() {
		http.Error(w, "listener stopping", http.StatusServiceUnavailable)
		return
	}

	defer l.wg.Done()

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := fmt.Sprintf("ws-%d", l.connID.Add(1))

	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = id
	}

	s := &wsSession{conn: conn}
	defer s.Close()

	if !l.register(id, s) {
		return
	}

	conn.SetReadLimit(int64(l.maxPayload))

	l.metrics.ClientConnected(TransportWebSocket)
	l.log.Debug().Msgf("Client connected: %s (%s) from %s", id, clientID, r.RemoteAddr)
	l.events.clientConnected(id, r.RemoteAddr)

	defer func() {
		l.clients.remove(id)
		l.metrics.ClientDisconnected(TransportWebSocket)
		l.log.Debug().Msgf("Client disconnected: %s", id)
		l.events.clientDisconnected(id)
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) && !isClosed(err) {
				l.log.Debug().Err(err).Msgf("Session %s ended", id)
			}

			return
		}

		if kind != websocket.TextMessage {
			continue
		}

		p, err := bridge.Parse(string(data), clientID)
		if err != nil {
			l.metrics.DecodeFailed(TransportWebSocket)
			l.events.reportError(fmt.Errorf("%s: %w", id, err))

			continue
		}

		l.metrics.PacketReceived(TransportWebSocket, p.Type())
		l.events.packetReceived(p, id)
	}
}

// wsSession closes a WebSocket with a normal closure frame
type wsSession struct {
	conn *websocket.Conn
	once sync.Once
}

func (s *wsSession) Close() error {
	var err error

	s.once.Do(func() {
		deadline := time.Now().Add(config.WebSocketCloseTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown")

		s.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		err = s.conn.Close()
	})

	return err
}
