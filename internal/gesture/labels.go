// Package gesture provides gesture label types and the classifiers that
// turn hand landmarks into per-tick gesture labels.
package gesture

// Static represents a hand pose classified from a single frame.
type Static string

const (
	// StaticNone means no hand was detected or the pose is ambiguous.
	StaticNone Static = ""
	// StaticOpen is an open palm with all fingers extended.
	StaticOpen Static = "Open"
	// StaticClose is a closed fist.
	StaticClose Static = "Close"
	// StaticPoint is an extended index finger with the rest curled.
	StaticPoint Static = "Point"
)

// Dynamic represents a motion pattern classified from a short trailing
// window of hand positions.
type Dynamic string

const (
	// DynamicNone means no qualifying motion was observed.
	DynamicNone Dynamic = ""
	// ClockWise is a clockwise rotation of the index fingertip.
	ClockWise Dynamic = "ClockWise"
	// CounterClockWise is a counter-clockwise rotation of the index fingertip.
	CounterClockWise Dynamic = "CounterClockWise"
)

// IsDirection reports whether d is one of the two rotation directions.
func (d Dynamic) IsDirection() bool {
	return d == ClockWise || d == CounterClockWise
}
