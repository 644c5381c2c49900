// Package fsm implements the gesture-to-actuation state machine. It turns
// the stream of noisy per-tick gesture labels into debounced, confirmed,
// time-bounded actuation commands on the robot capability port.
package fsm

import "time"

// State is the engine's operating mode. Exactly one state is active.
type State int

const (
	// StateDisabled forbids actuation. This is the initial state.
	StateDisabled State = iota
	// StateEnabled has actuation armed and accepts selection gestures.
	StateEnabled
	// StateAwaitConfirm holds a candidate selection pending confirmation.
	StateAwaitConfirm
	// StateRunning means a program pulse has been issued and the engine is
	// waiting for completion or timeout.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	case StateAwaitConfirm:
		return "await-confirm"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Config holds the engine's timing and debounce constants. They are fixed
// for the lifetime of the engine.
type Config struct {
	// StartHold is how long an Open palm must be held to arm from disabled.
	StartHold time.Duration
	// StopHold is how long a Close fist must be held to force disable.
	StopHold time.Duration
	// ConfirmTimeout bounds how long a candidate selection waits for its
	// confirmation before the engine falls back to enabled.
	ConfirmTimeout time.Duration
	// PulseDuration is how long the execute trigger is asserted.
	PulseDuration time.Duration
	// MaxRunningTime bounds the running state against a program that never
	// reports completion.
	MaxRunningTime time.Duration
	// ConfirmCount is the number of consecutive ticks of one rotation
	// direction needed both to select and to confirm.
	ConfirmCount int
}

// DefaultConfig returns the production timing constants.
func DefaultConfig() Config {
	return Config{
		StartHold:      3 * time.Second,
		StopHold:       3 * time.Second,
		ConfirmTimeout: 5 * time.Second,
		PulseDuration:  200 * time.Millisecond,
		MaxRunningTime: 15 * time.Second,
		ConfirmCount:   15,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartHold <= 0 {
		c.StartHold = d.StartHold
	}
	if c.StopHold <= 0 {
		c.StopHold = d.StopHold
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = d.ConfirmTimeout
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = d.PulseDuration
	}
	if c.MaxRunningTime <= 0 {
		c.MaxRunningTime = d.MaxRunningTime
	}
	if c.ConfirmCount <= 0 {
		c.ConfirmCount = d.ConfirmCount
	}
	return c
}
