// Package robot provides the actuator capability port for the robot-arm
// controller and its implementations.
package robot

import (
	"errors"
	"time"
)

// ErrNotConnected is returned when an actuator call is made before a
// connection to the controller has been established.
var ErrNotConnected = errors.New("robot controller is not connected")

// Program identifies one of the two pre-programmed arm routines.
type Program int

const (
	// ProgramOne is the routine selected by a clockwise gesture.
	// It is also the clean output state left behind after a pulse.
	ProgramOne Program = 1
	// ProgramTwo is the routine selected by a counter-clockwise gesture.
	ProgramTwo Program = 2
)

// DefaultProgram is the selection output value left asserted between runs.
const DefaultProgram = ProgramOne

// String returns a human-readable program name.
func (p Program) String() string {
	switch p {
	case ProgramOne:
		return "program-1"
	case ProgramTwo:
		return "program-2"
	default:
		return "program-unknown"
	}
}

// Actuator is the capability set the state machine drives. Implementations
// talk to the physical controller (or simulate one); every call is fallible
// and callers decide how a failure affects them.
type Actuator interface {
	// SetEnabled arms or disarms downstream actuation.
	SetEnabled(enabled bool) error

	// SetProgramSelection selects which program a subsequent pulse will run.
	SetProgramSelection(p Program) error

	// PulseExecute asserts the trigger output for the given duration and
	// then deasserts it. It blocks for the duration of the pulse.
	PulseExecute(d time.Duration) error

	// ProgramFinished reports whether the triggered program has completed.
	ProgramFinished() (bool, error)
}
