package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/report"
	"inspectd/internal/app/throttle"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

// Status is a read-only snapshot of the forwarder
type Status struct {
	Connected     bool       `json:"connected"`
	State         string     `json:"state"`
	Forwarded     int64      `json:"forwarded"`
	Buffered      int        `json:"buffered"`
	Dropped       uint64     `json:"dropped"`
	Attempts      int        `json:"reconnectAttempts"`
	LastForwarded *time.Time `json:"lastForwarded,omitempty"`
}

// Forwarder keeps one outbound link to the target listener and delivers JSON
// messages over it. Messages that cannot be sent right away are buffered and
// flushed in order after a reconnect.
type Forwarder interface {
	Start(ctx context.Context) error
	Forward(text string) bool
	Status() Status
	Stop() error
}

type forwarder struct {
	sender         Sender
	buffer         *Buffer
	state          *fsm.FSM
	healthInterval time.Duration
	maxAttempts    int
	backoff        *throttle.Backoff
	sendMu         sync.Mutex
	forwarded      atomic.Int64
	lastForwarded  atomic.Pointer[time.Time]
	attempts       atomic.Int64
	running        atomic.Bool
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	metrics        metrics.Recorder
	reporter       report.Reporter
	log            logger.Logger
}

// NewForwarder creates a forwarder sending through sender
func NewForwarder(cfg *config.Config, sender Sender, rec metrics.Recorder, reporter report.Reporter, log logger.Logger) Forwarder {
	log = log.WithComponent("FORWARDER")

	healthInterval := cfg.Relay.HealthInterval
	if healthInterval <= 0 {
		healthInterval = config.HealthInterval
	}

	return &forwarder{
		sender:         sender,
		buffer:         NewBuffer(cfg.Relay.Buffer),
		state:          newConnectionFSM(rec, log),
		healthInterval: healthInterval,
		maxAttempts:    cfg.Relay.MaxAttempts,
		backoff:        throttle.NewBackoff(cfg.Relay.ReconnectDelay, cfg.Relay.MaxReconnectDelay),
		metrics:        rec,
		reporter:       reporter,
		log:            log,
	}
}

// Start makes a first connection attempt and starts the health monitor. A
// failed first attempt is not an error, the monitor keeps retrying.
func (f *forwarder) Start(ctx context.Context) error {
	if f.running.Load() {
		return errors.ErrAlreadyListening
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.running.Store(true)

	if err := f.connect(ctx); err != nil {
		f.log.Warn().Err(err).Msg("Relay target unavailable, buffering until it comes back")
	}

	f.wg.Add(1)

	go func() {
		defer f.wg.Done()

		f.monitor(ctx)
	}()

	return nil
}

// Forward sends text now when the link is up and nothing is queued ahead of
// it, otherwise it buffers text. It reports false only after Stop.
func (f *forwarder) Forward(text string) bool {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	if !f.running.Load() {
		f.metrics.RelayRejected(1)
		return false
	}

	f.metrics.RelayAccepted(1)

	if f.sender.Connected() && f.buffer.Len() == 0 {
		err := f.sender.Send(text)
		if err == nil {
			f.delivered()
			return true
		}

		f.log.Warn().Err(err).Msg("Send failed, buffering")
	}

	f.enqueue(text)

	return true
}

func (f *forwarder) Status() Status {
	s := Status{
		Connected: f.sender.Connected(),
		State:     f.state.Current(),
		Forwarded: f.forwarded.Load(),
		Buffered:  f.buffer.Len(),
		Dropped:   f.buffer.Dropped(),
		Attempts:  int(f.attempts.Load()),
	}

	if last := f.lastForwarded.Load(); last != nil {
		t := *last
		s.LastForwarded = &t
	}

	return s
}

// Stop ends the monitor and closes the link. Buffered messages are kept in
// memory and reported as buffered.
func (f *forwarder) Stop() error {
	if !f.running.Load() {
		return nil
	}

	f.sendMu.Lock()
	f.running.Store(false)
	f.sendMu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}

	f.wg.Wait()

	f.event(context.Background(), Halt)
	f.log.Info().Msgf("Forwarder stopped with %d message(s) buffered", f.buffer.Len())

	return f.sender.Close()
}

func (f *forwarder) enqueue(text string) {
	if f.buffer.Push(text) {
		f.metrics.RelayDropped()
	}

	f.metrics.RelayBuffered(f.buffer.Len())
}

func (f *forwarder) delivered() {
	now := time.Now()

	f.forwarded.Add(1)
	f.lastForwarded.Store(&now)
	f.metrics.RelayForwarded()
}

// monitor polls the link and reconnects when it is down
func (f *forwarder) monitor(ctx context.Context) {
	ticker := time.NewTicker(f.healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if f.sender.Connected() {
			continue
		}

		f.event(ctx, Lose)

		if !f.reconnect(ctx) {
			return
		}
	}
}

// reconnect waits and dials until it succeeds, the attempts run out or ctx
// ends. The delay doubles after every failure up to the configured ceiling.
func (f *forwarder) reconnect(ctx context.Context) bool {
	for {
		if f.maxAttempts > 0 && int(f.attempts.Load()) >= f.maxAttempts {
			f.event(ctx, GiveUp)
			f.log.Error().Msgf("Giving up after %d reconnect attempt(s)", f.attempts.Load())
			f.reporter.Capture(errors.ErrMaxRetriesExceeded, map[string]string{"component": "relay"})

			return false
		}

		delay := f.backoff.Next()
		f.log.Info().Msgf("Reconnecting in %s", delay)

		if !sleep(ctx, delay) {
			return false
		}

		f.attempts.Add(1)

		if err := f.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return false
			}

			f.log.Warn().Err(err).Msgf("Reconnect attempt %d failed", f.attempts.Load())

			continue
		}

		return true
	}
}

// connect dials the target and flushes the buffer on success
func (f *forwarder) connect(ctx context.Context) error {
	f.event(ctx, Dial)

	if err := f.sender.Connect(ctx); err != nil {
		f.event(ctx, Fail)
		f.metrics.RelayReconnect(false)

		return err
	}

	f.event(ctx, Established)
	f.metrics.RelayReconnect(true)
	f.attempts.Store(0)
	f.backoff.Reset()
	f.log.Info().Msg("Connected to relay target")

	f.flush()

	return nil
}

// flush sends buffered messages oldest first and stops at the first failure
func (f *forwarder) flush() {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	sent := 0

	for {
		text, ok := f.buffer.Peek()
		if !ok {
			break
		}

		if err := f.sender.Send(text); err != nil {
			f.log.Warn().Err(err).Msgf("Flush interrupted with %d message(s) left", f.buffer.Len())
			break
		}

		f.buffer.Pop()
		f.delivered()
		sent++
	}

	f.metrics.RelayBuffered(f.buffer.Len())

	if sent > 0 {
		f.log.Info().Msgf("Flushed %d buffered message(s)", sent)
	}
}

// event fires a state transition. Transitions that do not apply in the
// current state are ignored.
func (f *forwarder) event(ctx context.Context, name string) {
	if err := f.state.Event(ctx, name); err != nil {
		var noTransition fsm.NoTransitionError
		var invalid fsm.InvalidEventError

		if !errors.As(err, &noTransition) && !errors.As(err, &invalid) {
			f.log.Debug().Err(err).Msgf("State event %s", name)
		}
	}
}

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
