package metrics

import (
	"time"

	"github.com/renderix/mudra/internal/robot"
)

// InstrumentedActuator wraps a robot.Actuator and counts errors and
// execute pulses.
type InstrumentedActuator struct {
	next    robot.Actuator
	metrics *Metrics

	// last selection, for labeling pulses
	selected robot.Program
}

// WrapActuator instruments an actuator with the given metrics.
func WrapActuator(next robot.Actuator, m *Metrics) *InstrumentedActuator {
	return &InstrumentedActuator{next: next, metrics: m, selected: robot.DefaultProgram}
}

func (a *InstrumentedActuator) SetEnabled(enabled bool) error {
	err := a.next.SetEnabled(enabled)
	if err != nil {
		a.metrics.ActuatorErrors.WithLabelValues("set_enabled").Inc()
	}
	return err
}

func (a *InstrumentedActuator) SetProgramSelection(p robot.Program) error {
	err := a.next.SetProgramSelection(p)
	if err != nil {
		a.metrics.ActuatorErrors.WithLabelValues("set_program_selection").Inc()
		return err
	}
	a.selected = p
	return nil
}

func (a *InstrumentedActuator) PulseExecute(d time.Duration) error {
	err := a.next.PulseExecute(d)
	if err != nil {
		a.metrics.ActuatorErrors.WithLabelValues("pulse_execute").Inc()
		return err
	}
	a.metrics.Pulses.WithLabelValues(a.selected.String()).Inc()
	return nil
}

func (a *InstrumentedActuator) ProgramFinished() (bool, error) {
	finished, err := a.next.ProgramFinished()
	if err != nil {
		a.metrics.ActuatorErrors.WithLabelValues("program_finished").Inc()
	}
	return finished, err
}
