package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renderix/mudra/internal/detector"
)

func TestClassifyStatic_Poses(t *testing.T) {
	open := detector.OpenPalmLandmarks()
	fist := detector.FistLandmarks()
	point := detector.PointingLandmarks()

	assert.Equal(t, StaticOpen, ClassifyStatic(&open))
	assert.Equal(t, StaticClose, ClassifyStatic(&fist))
	assert.Equal(t, StaticPoint, ClassifyStatic(&point))
}

func TestClassifyStatic_Nil(t *testing.T) {
	assert.Equal(t, StaticNone, ClassifyStatic(nil))
}

func TestClassifyStatic_ScaleInvariant(t *testing.T) {
	// A fist detected close to the camera is still a fist.
	fist := detector.FistLandmarks()
	for i := range fist.Points {
		fist.Points[i].X *= 3
		fist.Points[i].Y *= 3
	}
	assert.Equal(t, StaticClose, ClassifyStatic(&fist))
}

// circlePath generates n points around a circle of radius r. With image
// coordinates (y grows downward), increasing angle sweeps clockwise as
// seen on screen; reversed order sweeps counter-clockwise.
func circlePath(n int, r float64, reversed bool) []PathPoint {
	path := make([]PathPoint, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		if reversed {
			angle = -angle
		}
		path[i] = PathPoint{
			X:         0.5 + r*math.Cos(angle),
			Y:         0.5 + r*math.Sin(angle),
			Timestamp: int64(i) * 66,
		}
	}
	return path
}

func TestRotationDirection_ClockWise(t *testing.T) {
	assert.Equal(t, ClockWise, RotationDirection(circlePath(16, 0.1, false)))
}

func TestRotationDirection_CounterClockWise(t *testing.T) {
	assert.Equal(t, CounterClockWise, RotationDirection(circlePath(16, 0.1, true)))
}

func TestRotationDirection_TooFewPoints(t *testing.T) {
	assert.Equal(t, DynamicNone, RotationDirection(circlePath(MinPathPoints-1, 0.1, false)))
}

func TestRotationDirection_StraightLineIsNotRotation(t *testing.T) {
	path := make([]PathPoint, 20)
	for i := range path {
		path[i] = PathPoint{X: 0.1 + 0.02*float64(i), Y: 0.5, Timestamp: int64(i) * 66}
	}
	assert.Equal(t, DynamicNone, RotationDirection(path))
}

func TestRotationDirection_JitterBelowThreshold(t *testing.T) {
	// A tiny tremor sweeps almost no area and must not register.
	assert.Equal(t, DynamicNone, RotationDirection(circlePath(16, 0.01, false)))
}
