package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/mock/gomock"

	"inspectd/internal/app/errors"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Relay.Address = "127.0.0.1:0"
	cfg.Relay.Buffer = 100
	cfg.Relay.ReconnectDelay = 10 * time.Millisecond
	cfg.Relay.MaxReconnectDelay = 20 * time.Millisecond
	cfg.Relay.HealthInterval = 10 * time.Millisecond

	return cfg
}

func testLogger(ctrl *gomock.Controller) logger.Logger {
	l := logger.NewMockLogger(ctrl)
	l.EXPECT().WithComponent(gomock.Any()).Return(l).AnyTimes()
	l.EXPECT().Debug().Return(nil).AnyTimes()
	l.EXPECT().Info().Return(nil).AnyTimes()
	l.EXPECT().Warn().Return(nil).AnyTimes()
	l.EXPECT().Error().Return(nil).AnyTimes()

	return l
}

// target simulates the remote listener behind a MockSender
type target struct {
	up        atomic.Bool
	connected atomic.Bool
	connects  atomic.Int64
	mu        sync.Mutex
	sent      []string
}

func newTarget(ctrl *gomock.Controller) (*target, *MockSender) {
	tg := &target{}
	sender := NewMockSender(ctrl)

	sender.EXPECT().Connect(gomock.Any()).DoAndReturn(func(context.Context) error {
		tg.connects.Add(1)

		if !tg.up.Load() {
			return errors.ErrFailedToConnect
		}

		tg.connected.Store(true)

		return nil
	}).AnyTimes()

	sender.EXPECT().Connected().DoAndReturn(func() bool {
		return tg.connected.Load()
	}).AnyTimes()

	sender.EXPECT().Send(gomock.Any()).DoAndReturn(func(text string) error {
		if !tg.connected.Load() {
			return errors.ErrNotConnected
		}

		tg.mu.Lock()
		defer tg.mu.Unlock()

		tg.sent = append(tg.sent, text)

		return nil
	}).AnyTimes()

	sender.EXPECT().Close().DoAndReturn(func() error {
		tg.connected.Store(false)
		return nil
	}).AnyTimes()

	return tg, sender
}

func (tg *target) messages() []string {
	tg.mu.Lock()
	defer tg.mu.Unlock()

	return append([]string(nil), tg.sent...)
}

// capturingReporter records captured errors
type capturingReporter struct {
	mu     sync.Mutex
	errors []error
}

func (r *capturingReporter) Capture(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, err)
}

func (r *capturingReporter) Flush(time.Duration) bool {
	return true
}

func (r *capturingReporter) captured() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errors...)
}
