package gesture

import (
	"math"

	"github.com/renderix/mudra/internal/detector"
)

// PathPoint represents a tracked fingertip position.
type PathPoint struct {
	X         float64 // X coordinate
	Y         float64 // Y coordinate
	Timestamp int64   // Timestamp in milliseconds
}

// Classification thresholds.
const (
	// extendedRatio is the minimum tip-to-wrist vs pip-to-wrist distance
	// ratio for a finger to count as extended.
	extendedRatio = 1.15

	// MinPathPoints is the minimum number of buffered path points needed
	// before a rotation direction can be classified.
	MinPathPoints = 10

	// minSweepArea is the minimum absolute signed area (in normalized
	// screen units) a path must sweep to count as a rotation.
	minSweepArea = 0.005
)

// fingers lists the (pip, tip) landmark index pairs for the four fingers,
// thumb excluded. Thumb extension is unreliable across handedness and is
// not needed to separate the three poses.
var fingers = [4][2]int{
	{detector.IndexPIP, detector.IndexTip},
	{detector.MiddlePIP, detector.MiddleTip},
	{detector.RingPIP, detector.RingTip},
	{detector.PinkyPIP, detector.PinkyTip},
}

// ClassifyStatic classifies a hand pose into one of the static labels.
// It normalizes the landmarks and counts extended fingers: four extended is
// an open palm, none is a fist, index alone is pointing. Anything else is
// ambiguous and reported as StaticNone.
func ClassifyStatic(hand *detector.HandLandmarks) Static {
	if hand == nil {
		return StaticNone
	}

	normalized := hand.Normalize()
	if normalized == nil {
		return StaticNone
	}

	wrist := normalized.Points[detector.Wrist]

	extended := 0
	indexExtended := false
	for i, f := range fingers {
		pipDist := planarDistance(normalized.Points[f[0]], wrist)
		tipDist := planarDistance(normalized.Points[f[1]], wrist)
		if pipDist > 0 && tipDist/pipDist >= extendedRatio {
			extended++
			if i == 0 {
				indexExtended = true
			}
		}
	}

	switch {
	case extended == 4:
		return StaticOpen
	case extended == 0:
		return StaticClose
	case extended == 1 && indexExtended:
		return StaticPoint
	default:
		return StaticNone
	}
}

// RotationDirection classifies the rotation direction of a fingertip path.
// It computes the signed area swept by the path (shoelace sum). Image
// coordinates grow downward, so a positive signed area corresponds to a
// clockwise motion as seen on screen.
func RotationDirection(path []PathPoint) Dynamic {
	if len(path) < MinPathPoints {
		return DynamicNone
	}

	var area float64
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		area += a.X*b.Y - b.X*a.Y
	}
	// Close the loop back to the first point
	last, first := path[len(path)-1], path[0]
	area += last.X*first.Y - first.X*last.Y
	area /= 2

	if math.Abs(area) < minSweepArea {
		return DynamicNone
	}
	if area > 0 {
		return ClockWise
	}
	return CounterClockWise
}

// planarDistance is the 2D distance between two landmarks, ignoring depth.
// Depth estimates from single-camera detection are too noisy for pose
// classification.
func planarDistance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
