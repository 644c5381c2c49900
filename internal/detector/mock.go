package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to script the detection results per call.
type MockDetector struct {
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// QueueHands appends a per-call result; queued results are consumed one per
// Detect call before falling back to the SetHands value.
func (m *MockDetector) QueueHands(hands []HandLandmarks) {
	m.queue = append(m.queue, hands)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the scripted hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		hands := m.queue[0]
		m.queue = m.queue[1:]
		return hands, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a preset pose with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb out to the side
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Four fingers extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// FistLandmarks returns a preset pose with all fingers curled into the palm.
func FistLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb folded across the curled fingers
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.70, Z: 0.02}
	lm.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.67, Z: 0.02}
	lm.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.66, Z: 0.02}

	// Fingers curled: tips end up closer to the wrist than the PIP joints
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.62, Z: -0.03}
	lm.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.66, Z: -0.04}
	lm.Points[IndexTip] = Point3D{X: 0.52, Y: 0.70, Z: -0.02}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.60, Z: -0.03}
	lm.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.65, Z: -0.04}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.70, Z: -0.02}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.45, Y: 0.62, Z: -0.03}
	lm.Points[RingDIP] = Point3D{X: 0.45, Y: 0.66, Z: -0.04}
	lm.Points[RingTip] = Point3D{X: 0.46, Y: 0.70, Z: -0.02}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.41, Y: 0.64, Z: -0.03}
	lm.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.68, Z: -0.04}
	lm.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.72, Z: -0.02}

	return lm
}

// PointingLandmarks returns a preset pose with only the index finger
// extended. The fingertip tracks the rotation gestures.
func PointingLandmarks() HandLandmarks {
	lm := FistLandmarks()

	// Extend the index finger from the fist pose
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	return lm
}
