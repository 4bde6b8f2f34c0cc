package listener

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/config/logger"
)

// frameServer holds the state shared by the TCP and pipe listeners
type frameServer struct {
	transport  string
	prefix     string
	banner     string
	ack        bool
	maxPayload int
	grace      time.Duration
	events     subscribers
	clients    *registry
	running    atomic.Bool
	wg         sync.WaitGroup
	connID     atomic.Int64
	metrics    metrics.Recorder
	log        logger.Logger
}

func (b *frameServer) Name() string {
	return b.transport
}

func (b *frameServer) IsListening() bool {
	return b.running.Load()
}

func (b *frameServer) ClientCount() int {
	return b.clients.count()
}

func (b *frameServer) Subscribe(h Handlers) {
	b.events.add(h)
}

// serve runs a session for conn and reports its lifecycle
func (b *frameServer) serve(conn net.Conn) {
	defer conn.Close()

	id := fmt.Sprintf("%s-%d", b.prefix, b.connID.Add(1))
	remote := remoteAddr(conn)

	b.clients.add(id, conn)

	b.metrics.ClientConnected(b.transport)
	b.log.Debug().Msgf("Client connected: %s from %s", id, remote)
	b.events.clientConnected(id, remote)

	s := &session{
		id:         id,
		transport:  b.transport,
		conn:       conn,
		banner:     b.banner,
		ack:        b.ack,
		maxPayload: b.maxPayload,
		events:     &b.events,
		metrics:    b.metrics,
		log:        b.log,
	}

	if err := s.run(); err != nil && !isClosed(err) {
		b.metrics.ListenerError(b.transport)
		b.log.Warn().Err(err).Msgf("Session %s ended", id)
		b.events.reportError(fmt.Errorf("%s: %w", id, err))
	}

	b.clients.remove(id)
	b.metrics.ClientDisconnected(b.transport)
	b.log.Debug().Msgf("Client disconnected: %s", id)
	b.events.clientDisconnected(id)
}

// drain waits for sessions to finish on their own for the grace period and
// then closes whatever is still open
func (b *frameServer) drain() {
	done := make(chan struct{})

	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(b.grace):
	}

	if n := b.clients.closeAll(); n > 0 {
		b.log.Info().Msgf("Closed %d connection(s) after %s grace period", n, b.grace)
	}

	<-done
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}

	return "local"
}

// isClosed reports errors caused by our own shutdown or a peer reset
func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
