package listener

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/throttle"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// pipeListener serves local clients over a Unix domain socket. It keeps a
// pool of instances blocked in Accept: whenever one picks up a client it
// starts a replacement before serving, so the pool never runs dry. Frames are
// not acknowledged on this transport.
type pipeListener struct {
	frameServer
	path      string
	instances int
	limiter   throttle.Limiter
	listener  net.Listener
	cancel    context.CancelFunc
	waiting   atomic.Int64
	serving   atomic.Int64
}

// PipePool exposes the instance counters of the pipe listener
type PipePool interface {
	Waiting() int
	Serving() int
}

// NewPipe creates the pipe-style listener
func NewPipe(cfg *config.Config, log logger.Logger, rec metrics.Recorder, limiter throttle.Limiter) Listener {
	return &pipeListener{
		frameServer: frameServer{
			transport:  TransportPipe,
			prefix:     "pipe",
			banner:     cfg.TCP.Banner,
			maxPayload: cfg.Listener.MaxPayload,
			grace:      cfg.Listener.ShutdownGrace,
			clients:    newRegistry(),
			metrics:    rec,
			log:        log.WithComponent("PIPE"),
		},
		path:      PipePath(cfg.Pipe.Dir, cfg.Pipe.Name),
		instances: cfg.Pipe.Instances,
		limiter:   limiter,
	}
}

// PipePath returns the socket path for a pipe name
func PipePath(dir, name string) string {
	return filepath.Join(dir, name+config.PipeSuffix)
}

func (l *pipeListener) Addr() string {
	return l.path
}

// Waiting returns the number of instances blocked in Accept
func (l *pipeListener) Waiting() int {
	return int(l.waiting.Load())
}

// Serving returns the number of instances serving a client
func (l *pipeListener) Serving() int {
	return int(l.serving.Load())
}

func (l *pipeListener) Start(ctx context.Context) error {
	if l.running.Load() {
		return errors.ErrAlreadyListening
	}

	if err := l.cleanupStaleSocket(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToCleanupSocket, err)
	}

	ln, err := net.Listen("unix", l.path)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", errors.ErrFailedToListen, l.path, err)
	}

	l.openAccess()

	l.listener = ln
	l.running.Store(true)
	l.log.Info().Msgf("Listening on %s with %d instances", l.path, l.instances)

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	for i := 0; i < l.instances; i++ {
		l.spawn(ctx)
	}

	return nil
}

func (l *pipeListener) Stop() error {
	if !l.running.Load() {
		return nil
	}

	l.running.Store(false)

	if l.cancel != nil {
		l.cancel()
	}

	l.listener.Close()
	l.drain()

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		l.log.Warn().Err(err).Msgf("Failed to remove socket file: %s", l.path)
	}

	l.log.Info().Msg("Listener stopped")

	return nil
}

// openAccess lets any local user connect. Without the rights to do so the
// socket keeps the default permissions.
func (l *pipeListener) openAccess() {
	if err := os.Chmod(l.path, config.PipePermissions); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return
		}

		l.log.Debug().Err(err).Msgf("Keeping default permissions on %s", l.path)
	}
}

// cleanupStaleSocket removes a socket file left behind by a dead process
func (l *pipeListener) cleanupStaleSocket() error {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil
	}

	conn, err := net.DialTimeout("unix", l.path, config.PipeDialTimeout)
	if err == nil {
		conn.Close()

		return fmt.Errorf("%w: %s", errors.ErrSocketAlreadyInUse, l.path)
	}

	l.log.Info().Msgf("Removing stale socket: %s", l.path)

	return os.Remove(l.path)
}

// spawn starts one waiting instance
func (l *pipeListener) spawn(ctx context.Context) {
	l.wg.Add(1)

	go func() {
		defer l.wg.Done()

		l.instance(ctx)
	}()
}

// instance waits for one client, hands the pool a replacement and serves it
func (l *pipeListener) instance(ctx context.Context) {
	backoff := throttle.NewBackoff(config.AcceptBackoffInitial, config.AcceptBackoffMax)

	for {
		l.waiting.Add(1)
		conn, err := l.listener.Accept()
		l.waiting.Add(-1)

		if err == nil {
			l.serving.Add(1)

			if l.running.Load() {
				l.spawn(ctx)
			}

			l.serve(conn)
			l.serving.Add(-1)

			return
		}

		if !l.running.Load() || isClosed(err) {
			return
		}

		l.metrics.ListenerError(l.transport)

		if l.limiter.Allow(err.Error()) {
			l.log.Error().Err(err).Msg("Failed to accept connection")
			l.events.reportError(err)
		}

		if !sleep(ctx, backoff.Next()) {
			return
		}
	}
}
