package relay

import (
	"context"

	"github.com/looplab/fsm"

	"inspectd/internal/app/metrics"
	"inspectd/internal/config/logger"
)

// Connection states
const (
	Disconnected = "disconnected"
	Connecting   = "connecting"
	Connected    = "connected"
	Exhausted    = "exhausted"
	Stopped      = "stopped"
)

// Connection events
const (
	Dial        = "dial"
	Established = "established"
	Fail        = "fail"
	Lose        = "lose"
	GiveUp      = "give_up"
	Halt        = "halt"
)

// FSM callbacks
const (
	OnConnected    = "enter_connected"
	OnDisconnected = "enter_disconnected"
)

// newConnectionFSM tracks the link to the relay target
func newConnectionFSM(rec metrics.Recorder, log logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		Disconnected,
		fsm.Events{
			{Name: Dial, Src: []string{Disconnected}, Dst: Connecting},
			{Name: Established, Src: []string{Connecting}, Dst: Connected},
			{Name: Fail, Src: []string{Connecting}, Dst: Disconnected},
			{Name: Lose, Src: []string{Connected}, Dst: Disconnected},
			{Name: GiveUp, Src: []string{Disconnected}, Dst: Exhausted},
			{Name: Halt, Src: []string{Disconnected, Connecting, Connected, Exhausted}, Dst: Stopped},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				log.Debug().Msgf("STATE %s → %s (trigger: %s)", e.Src, e.Dst, e.Event)
			},
			OnConnected: func(ctx context.Context, e *fsm.Event) {
				rec.RelayConnected(true)
			},
			OnDisconnected: func(ctx context.Context, e *fsm.Event) {
				rec.RelayConnected(false)
			},
		},
	)
}
