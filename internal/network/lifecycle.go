package network

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

// Lifecycle states of a handle.
const (
	StateStarting = "starting"
	StateReady    = "ready"
	StateUpgraded = "upgraded"
	StateClosed   = "closed"
)

const (
	eventReady   = "become_ready"
	eventUpgrade = "upgrade"
	eventClose   = "close"
)

// newLifecycle returns the state machine of a handle:
// starting -> ready -> upgraded, and closed from any of them.
func newLifecycle(logger zerolog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateStarting,
		fsm.Events{
			{Name: eventReady, Src: []string{StateStarting}, Dst: StateReady},
			{Name: eventUpgrade, Src: []string{StateReady}, Dst: StateUpgraded},
			{Name: eventClose, Src: []string{StateStarting, StateReady, StateUpgraded}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug().Str("from", e.Src).Str("to", e.Dst).Msg("lifecycle transition")
			},
		},
	)
}
