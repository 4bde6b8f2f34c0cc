package listener

import (
	"context"

	"inspectd/internal/app/bus"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/throttle"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Set is the group of listeners enabled in the configuration
type Set struct {
	listeners []Listener
	bus       bus.Bus
	log       logger.Logger
}

// NewSet builds every enabled listener
func NewSet(cfg *config.Config, log logger.Logger, rec metrics.Recorder, limiter throttle.Limiter) *Set {
	s := &Set{log: log.WithComponent("LISTENER")}

	if cfg.TCP.Enabled {
		s.listeners = append(s.listeners, NewTCP(cfg, log, rec))
	}

	if cfg.Pipe.Enabled {
		s.listeners = append(s.listeners, NewPipe(cfg, log, rec, limiter))
	}

	if cfg.WebSocket.Enabled {
		s.listeners = append(s.listeners, NewWebSocket(cfg, log, rec))
	}

	return s
}

// Listeners returns the listeners in start order
func (s *Set) Listeners() []Listener {
	return s.listeners
}

// Attach publishes the events of every listener on b
func (s *Set) Attach(b bus.Bus) {
	s.bus = b

	for _, l := range s.listeners {
		l.Subscribe(Publish(b, l.Name()))
	}
}

// Subscribe registers h on every listener
func (s *Set) Subscribe(h Handlers) {
	for _, l := range s.listeners {
		l.Subscribe(h)
	}
}

// Start starts every listener. If one fails the ones already started are
// stopped again.
func (s *Set) Start(ctx context.Context) error {
	for i, l := range s.listeners {
		if err := l.Start(ctx); err != nil {
			for _, started := range s.listeners[:i] {
				started.Stop()
			}

			return err
		}

		if s.bus != nil {
			s.bus.Publish(bus.Message{
				Type:     bus.EventListenerStarted,
				Data:     bus.ListenerStarted{Transport: l.Name(), Addr: l.Addr()},
				Critical: true,
			})
		}
	}

	return nil
}

// Stop stops every listener and joins their errors
func (s *Set) Stop() error {
	var errs []error

	for _, l := range s.listeners {
		if !l.IsListening() {
			continue
		}

		if err := l.Stop(); err != nil {
			s.log.Warn().Err(err).Msgf("Failed to stop %s listener", l.Name())
			errs = append(errs, err)
		}

		if s.bus != nil {
			s.bus.Publish(bus.Message{
				Type:     bus.EventListenerStopped,
				Data:     bus.ListenerStopped{Transport: l.Name()},
				Critical: true,
			})
		}
	}

	return errors.Join(errs...)
}

// ClientCount sums the clients of all listeners
func (s *Set) ClientCount() int {
	total := 0

	for _, l := range s.listeners {
		total += l.ClientCount()
	}

	return total
}
