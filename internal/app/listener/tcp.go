package listener

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/throttle"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

type tcpListener struct {
	frameServer
	port     int
	listener net.Listener
	cancel   context.CancelFunc
}

// NewTCP creates the stream socket listener. Every frame is acknowledged.
func NewTCP(cfg *config.Config, log logger.Logger, rec metrics.Recorder) Listener {
	return &tcpListener{
		frameServer: frameServer{
			transport:  TransportTCP,
			prefix:     "tcp",
			banner:     cfg.TCP.Banner,
			ack:        true,
			maxPayload: cfg.Listener.MaxPayload,
			grace:      cfg.Listener.ShutdownGrace,
			clients:    newRegistry(),
			metrics:    rec,
			log:        log.WithComponent("TCP"),
		},
		port: cfg.TCP.Port,
	}
}

// Addr returns the bound address, or the configured one before Start
func (l *tcpListener) Addr() string {
	if l.listener != nil {
		return l.listener.Addr().String()
	}

	return net.JoinHostPort("", strconv.Itoa(l.port))
}

func (l *tcpListener) Start(ctx context.Context) error {
	if l.running.Load() {
		return errors.ErrAlreadyListening
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(l.port)))
	if err != nil {
		return fmt.Errorf("%w on tcp port %d: %w", errors.ErrFailedToListen, l.port, err)
	}

	l.listener = ln
	l.running.Store(true)
	l.log.Info().Msgf("Listening on %s", ln.Addr())

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)

	go func() {
		defer l.wg.Done()

		l.acceptConnections(ctx)
	}()

	return nil
}

func (l *tcpListener) Stop() error {
	if !l.running.Load() {
		return nil
	}

	l.running.Store(false)

	if l.cancel != nil {
		l.cancel()
	}

	l.listener.Close()
	l.drain()

	l.log.Info().Msg("Listener stopped")

	return nil
}

func (l *tcpListener) acceptConnections(ctx context.Context) {
	backoff := throttle.NewBackoff(config.AcceptBackoffInitial, config.AcceptBackoffMax)

	for l.running.Load() {
		conn, err := l.listener.Accept()
		if err != nil {
			if !l.running.Load() || isClosed(err) {
				return
			}

			l.metrics.ListenerError(l.transport)
			l.log.Error().Err(err).Msg("Failed to accept connection")
			l.events.reportError(err)

			if !sleep(ctx, backoff.Next()) {
				return
			}

			continue
		}

		backoff.Reset()

		l.wg.Add(1)

		go func(c net.Conn) {
			defer l.wg.Done()

			l.serve(c)
		}(conn)
	}
}
