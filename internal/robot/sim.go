package robot

import (
	"log"
	"sync"
	"time"
)

// Simulator is an in-memory Actuator used when no robot hardware is
// reachable, and by tests. It records every call in order and lets tests
// inject failures per call name.
type Simulator struct {
	mu        sync.Mutex
	enabled   bool
	selection Program
	finished  bool
	calls     []string
	failures  map[string]error
	pulses    int
}

// NewSimulator creates a Simulator. The simulated program reports finished
// immediately, mirroring how a disconnected controller is treated.
func NewSimulator() *Simulator {
	return &Simulator{
		selection: DefaultProgram,
		finished:  true,
		failures:  make(map[string]error),
	}
}

// SetEnabled records the armed state.
func (s *Simulator) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled {
		s.record("SetEnabled(true)")
	} else {
		s.record("SetEnabled(false)")
	}
	if err := s.failures["SetEnabled"]; err != nil {
		return err
	}
	s.enabled = enabled
	return nil
}

// SetProgramSelection records the selected program.
func (s *Simulator) SetProgramSelection(p Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("SetProgramSelection(" + p.String() + ")")
	if err := s.failures["SetProgramSelection"]; err != nil {
		return err
	}
	s.selection = p
	return nil
}

// PulseExecute records a trigger pulse. The simulated pulse does not block;
// there is no physical line to hold.
func (s *Simulator) PulseExecute(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("PulseExecute")
	if err := s.failures["PulseExecute"]; err != nil {
		return err
	}
	s.pulses++
	log.Printf("SIMULATION: execute pulse held for %s", d)
	return nil
}

// ProgramFinished returns the configured finished flag.
func (s *Simulator) ProgramFinished() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record("ProgramFinished")
	if err := s.failures["ProgramFinished"]; err != nil {
		return false, err
	}
	return s.finished, nil
}

// SetFinished sets the value ProgramFinished will report.
func (s *Simulator) SetFinished(finished bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = finished
}

// FailWith makes the named call (SetEnabled, SetProgramSelection,
// PulseExecute or ProgramFinished) return err. A nil err clears the failure.
func (s *Simulator) FailWith(call string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, call)
		return
	}
	s.failures[call] = err
}

// Enabled returns the last recorded armed state.
func (s *Simulator) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Selection returns the last recorded program selection.
func (s *Simulator) Selection() Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Pulses returns the number of successful trigger pulses.
func (s *Simulator) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}

// Calls returns a copy of the recorded call sequence.
func (s *Simulator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]string, len(s.calls))
	copy(calls, s.calls)
	return calls
}

// ResetCalls clears the recorded call sequence and pulse count.
func (s *Simulator) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = s.calls[:0]
	s.pulses = 0
}

func (s *Simulator) record(call string) {
	s.calls = append(s.calls, call)
}
