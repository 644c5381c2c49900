package fsm

import (
	"fmt"
	"time"

	"github.com/renderix/mudra/internal/gesture"
	"github.com/renderix/mudra/internal/robot"
)

// Entry is one human-readable event emitted by the engine.
type Entry struct {
	Time    time.Time
	State   State
	Message string
}

// Engine is the gesture-to-actuation state machine. It is driven by a
// single caller, one Update per processing tick; Update and Drain must not
// be invoked concurrently.
//
// All actuator failures are caught here: they are logged into the event
// buffer and the transition logic proceeds as if the call had no side
// effect, so the engine never ends up in an unrecoverable state.
type Engine struct {
	config Config
	now    func() time.Time

	// OnTransition, when set, is invoked after every state change.
	OnTransition func(from, to State)

	state State

	// Zero time values mean "not currently held / not in a timed state".
	startHoldSince       time.Time
	stopHoldSince        time.Time
	awaitingConfirmSince time.Time
	runningSince         time.Time

	gestureCounter int
	confirmCounter int
	pending        gesture.Dynamic

	entries []Entry
}

// New creates an Engine in the disabled state. Zero config fields fall back
// to the defaults.
func New(config Config) *Engine {
	return &Engine{
		config: config.withDefaults(),
		now:    time.Now,
		state:  StateDisabled,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// PendingSelection returns the candidate direction being confirmed, or
// DynamicNone when no selection is pending.
func (e *Engine) PendingSelection() gesture.Dynamic {
	return e.pending
}

// Config returns the engine's timing constants.
func (e *Engine) Config() Config {
	return e.config
}

// Drain returns the events accumulated since the previous Drain and clears
// the buffer. Events keep their emission order; draining twice without an
// intervening Update yields nothing the second time.
func (e *Engine) Drain() []Entry {
	entries := e.entries
	e.entries = nil
	return entries
}

// Update advances the state machine by one tick.
//
// The stop override runs first, every tick, regardless of state: a fist
// held for the stop-hold duration always disables. Then the current state's
// handler consumes the tick.
func (e *Engine) Update(static gesture.Static, dynamic gesture.Dynamic, act robot.Actuator) {
	now := e.now()

	e.updateStopOverride(static, now, act)

	switch e.state {
	case StateDisabled:
		e.updateDisabled(static, now, act)
	case StateEnabled:
		e.updateEnabled(dynamic, now)
	case StateAwaitConfirm:
		e.updateAwaitConfirm(dynamic, now, act)
	case StateRunning:
		e.updateRunning(now, act)
	}
}

// updateStopOverride tracks the fist hold and forces the disabled state
// once it has been held long enough. The hold must be unbroken; any other
// gesture resets it.
func (e *Engine) updateStopOverride(static gesture.Static, now time.Time, act robot.Actuator) {
	if static != gesture.StaticClose {
		e.stopHoldSince = time.Time{}
		return
	}

	if e.stopHoldSince.IsZero() {
		e.stopHoldSince = now
	}
	if now.Sub(e.stopHoldSince) < e.config.StopHold {
		return
	}

	if e.state != StateDisabled {
		if err := act.SetEnabled(false); err != nil {
			e.logf(now, "disable output failed: %v", err)
		}
		e.transitionTo(StateDisabled, now)
		e.logf(now, "stop gesture held %.1fs: disabled", e.config.StopHold.Seconds())
	}
	// Require a fresh hold before the override can fire again
	e.stopHoldSince = time.Time{}
}

// updateDisabled arms the engine after an unbroken Open-palm hold.
func (e *Engine) updateDisabled(static gesture.Static, now time.Time, act robot.Actuator) {
	if static != gesture.StaticOpen {
		e.startHoldSince = time.Time{}
		return
	}

	if e.startHoldSince.IsZero() {
		e.startHoldSince = now
		return
	}
	if now.Sub(e.startHoldSince) < e.config.StartHold {
		return
	}

	if err := act.SetEnabled(true); err != nil {
		e.logf(now, "enable output failed: %v", err)
	}
	e.transitionTo(StateEnabled, now)
	e.logf(now, "start gesture held %.1fs: enabled", e.config.StartHold.Seconds())
}

// updateEnabled counts consecutive ticks of one rotation direction. The run
// must be continuous: a direction change restarts the count at one and any
// non-directional tick clears the candidate entirely.
func (e *Engine) updateEnabled(dynamic gesture.Dynamic, now time.Time) {
	if !dynamic.IsDirection() {
		e.pending = gesture.DynamicNone
		e.gestureCounter = 0
		return
	}

	if e.pending == dynamic {
		e.gestureCounter++
	} else {
		e.pending = dynamic
		e.gestureCounter = 1
	}

	if e.gestureCounter >= e.config.ConfirmCount {
		e.transitionTo(StateAwaitConfirm, now)
		e.logf(now, "selection %s pending confirmation", e.pending)
	}
}

// updateAwaitConfirm requires the pending direction to repeat for another
// full run before committing. No credit carries across an interruption, and
// the whole phase is bounded by the confirmation timeout.
func (e *Engine) updateAwaitConfirm(dynamic gesture.Dynamic, now time.Time, act robot.Actuator) {
	if dynamic == e.pending {
		e.confirmCounter++
	} else {
		e.confirmCounter = 0
	}

	if e.confirmCounter >= e.config.ConfirmCount {
		e.execute(now, act)
		return
	}

	if now.Sub(e.awaitingConfirmSince) > e.config.ConfirmTimeout {
		e.logf(now, "confirmation timeout, returning to enabled")
		e.transitionTo(StateEnabled, now)
	}
}

// execute commits the confirmed selection: select the program, pulse the
// trigger, restore the default selection, and enter the running state.
// Pulse failure is logged but never blocks the transition.
func (e *Engine) execute(now time.Time, act robot.Actuator) {
	program := robot.ProgramOne
	if e.pending == gesture.CounterClockWise {
		program = robot.ProgramTwo
	}

	if err := act.SetProgramSelection(program); err != nil {
		e.logf(now, "program selection failed: %v", err)
	}

	e.logf(now, "selection %s confirmed, executing %s", e.pending, program)

	if err := act.PulseExecute(e.config.PulseDuration); err != nil {
		e.logf(now, "execute pulse failed: %v", err)
	}

	// Leave the selection output in its clean default state
	if err := act.SetProgramSelection(robot.DefaultProgram); err != nil {
		e.logf(now, "program selection reset failed: %v", err)
	}

	e.transitionTo(StateRunning, now)
}

// updateRunning polls for completion. A poll failure is transient and keeps
// the state, but the max-running-time watchdog applies regardless of poll
// outcome so an actuator that never answers cannot wedge the engine.
func (e *Engine) updateRunning(now time.Time, act robot.Actuator) {
	finished, err := act.ProgramFinished()
	switch {
	case err != nil:
		e.logf(now, "program status poll failed: %v", err)
	case finished:
		e.logf(now, "program finished, returning to enabled")
		e.transitionTo(StateEnabled, now)
		return
	}

	if now.Sub(e.runningSince) > e.config.MaxRunningTime {
		e.logf(now, "running timeout, returning to enabled")
		e.transitionTo(StateEnabled, now)
	}
}

// transitionTo switches state and applies the entry reset rules. Every
// timer or counter that is not meaningful in the new state is cleared here,
// atomically with the switch, so no stale value survives a transition.
func (e *Engine) transitionTo(next State, now time.Time) {
	prev := e.state
	e.state = next

	switch next {
	case StateDisabled:
		e.startHoldSince = time.Time{}
		e.awaitingConfirmSince = time.Time{}
		e.runningSince = time.Time{}
		e.pending = gesture.DynamicNone
		e.gestureCounter = 0
		e.confirmCounter = 0

	case StateEnabled:
		e.pending = gesture.DynamicNone
		switch prev {
		case StateDisabled:
			e.startHoldSince = time.Time{}
			e.awaitingConfirmSince = time.Time{}
		case StateAwaitConfirm:
			e.awaitingConfirmSince = time.Time{}
			e.confirmCounter = 0
		case StateRunning:
			e.runningSince = time.Time{}
		}

	case StateAwaitConfirm:
		// pending stays set: it is the candidate being confirmed
		e.runningSince = time.Time{}
		e.gestureCounter = 0
		e.awaitingConfirmSince = now

	case StateRunning:
		e.runningSince = now
		e.awaitingConfirmSince = time.Time{}
		e.pending = gesture.DynamicNone
		e.confirmCounter = 0
	}

	if e.OnTransition != nil {
		e.OnTransition(prev, next)
	}
}

// logf appends a formatted event to the drain buffer.
func (e *Engine) logf(now time.Time, format string, args ...any) {
	e.entries = append(e.entries, Entry{
		Time:    now,
		State:   e.state,
		Message: fmt.Sprintf(format, args...),
	})
}
