package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/report"
	"inspectd/internal/app/throttle"
)

func Test_Forwarder_SendsWhenConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)
	tg.up.Store(true)

	f := NewForwarder(testConfig(), sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))
	defer f.Stop()

	assert.True(t, f.Forward(`{"a":1}`))
	assert.True(t, f.Forward(`{"a":2}`))

	status := f.Status()
	assert.True(t, status.Connected)
	assert.Equal(t, Connected, status.State)
	assert.Equal(t, int64(2), status.Forwarded)
	assert.Equal(t, 0, status.Buffered)
	assert.NotNil(t, status.LastForwarded)
	assert.Equal(t, []string{`{"a":1}`, `{"a":2}`}, tg.messages())
}

func Test_Forwarder_BuffersAndFlushesInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)

	f := NewForwarder(testConfig(), sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))
	defer f.Stop()

	for _, msg := range []string{"first", "second", "third"} {
		assert.True(t, f.Forward(msg))
	}

	status := f.Status()
	assert.False(t, status.Connected)
	assert.Equal(t, 3, status.Buffered)
	assert.Equal(t, int64(0), status.Forwarded)

	tg.up.Store(true)

	assert.Eventually(t, func() bool {
		return f.Status().Forwarded == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second", "third"}, tg.messages())
	assert.Equal(t, 0, f.Status().Buffered)
	assert.Equal(t, 0, f.Status().Attempts)
}

func Test_Forwarder_DropsOldestWhenFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, sender := newTarget(ctrl)

	cfg := testConfig()
	cfg.Relay.Buffer = 2
	cfg.Relay.HealthInterval = time.Hour

	f := NewForwarder(cfg, sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))
	defer f.Stop()

	for _, msg := range []string{"a", "b", "c"} {
		f.Forward(msg)
	}

	status := f.Status()
	assert.Equal(t, 2, status.Buffered)
	assert.Equal(t, uint64(1), status.Dropped)
}

func Test_Forwarder_GivesUpAfterMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)
	reporter := &capturingReporter{}

	cfg := testConfig()
	cfg.Relay.MaxAttempts = 2

	f := NewForwarder(cfg, sender, metrics.NoOp(), reporter, testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))
	defer f.Stop()

	assert.Eventually(t, func() bool {
		return len(reporter.captured()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, Exhausted, f.Status().State)
	// One initial attempt plus two reconnects
	assert.Equal(t, int64(3), tg.connects.Load())
	assert.Equal(t, 2, f.Status().Attempts)

	assert.ErrorIs(t, reporter.captured()[0], errors.ErrMaxRetriesExceeded)

	assert.True(t, f.Forward("kept"))
	assert.Equal(t, 1, f.Status().Buffered)
}

func Test_Forwarder_Stop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)
	tg.up.Store(true)

	f := NewForwarder(testConfig(), sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))

	assert.ErrorIs(t, f.Start(context.Background()), errors.ErrAlreadyListening)
	require.NoError(t, f.Stop())

	assert.False(t, f.Forward("late"))
	assert.Equal(t, Stopped, f.Status().State)
	assert.False(t, tg.connected.Load())
	assert.NoError(t, f.Stop())
}

func Test_Forwarder_ZeroHealthIntervalUsesDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)

	cfg := testConfig()
	cfg.Relay.HealthInterval = 0

	f := NewForwarder(cfg, sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	f.Stop()

	assert.Equal(t, int64(1), tg.connects.Load())
	assert.Equal(t, Stopped, f.Status().State)
}

func Test_Forwarder_ZeroReconnectDelayIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tg, sender := newTarget(ctrl)

	cfg := testConfig()
	cfg.Relay.ReconnectDelay = 0
	cfg.Relay.MaxReconnectDelay = 0

	f := NewForwarder(cfg, sender, metrics.NoOp(), report.NoOp(), testLogger(ctrl))
	require.NoError(t, f.Start(context.Background()))

	time.Sleep(200 * time.Millisecond)
	f.Stop()

	// At most one dial per backoff floor plus the initial attempt
	assert.LessOrEqual(t, tg.connects.Load(), int64(200*time.Millisecond/throttle.MinBackoff)+1)
	assert.Greater(t, tg.connects.Load(), int64(1))
}
