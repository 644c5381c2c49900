package detector

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize_WristAtOrigin(t *testing.T) {
	hand := OpenPalmLandmarks()
	normalized := hand.Normalize()

	if normalized == nil {
		t.Fatal("expected normalized landmarks, got nil")
	}

	wrist := normalized.Points[Wrist]
	if wrist.X != 0 || wrist.Y != 0 || wrist.Z != 0 {
		t.Errorf("expected wrist at origin, got (%f, %f, %f)", wrist.X, wrist.Y, wrist.Z)
	}
}

func TestNormalize_ScaleIsMiddleMCP(t *testing.T) {
	hand := OpenPalmLandmarks()
	normalized := hand.Normalize()

	dist := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if math.Abs(dist-1.0) > 1e-9 {
		t.Errorf("expected wrist to middle-MCP distance 1.0, got %f", dist)
	}
}

func TestNormalize_PreservesMetadata(t *testing.T) {
	hand := FistLandmarks()
	normalized := hand.Normalize()

	if normalized.Handedness != hand.Handedness {
		t.Errorf("handedness changed: got %q, want %q", normalized.Handedness, hand.Handedness)
	}
	if normalized.Score != hand.Score {
		t.Errorf("score changed: got %f, want %f", normalized.Score, hand.Score)
	}
}

func TestNormalize_Nil(t *testing.T) {
	var hand *HandLandmarks
	if hand.Normalize() != nil {
		t.Error("expected nil result for nil landmarks")
	}
}

func TestNormalize_ScaleInvariance(t *testing.T) {
	// The same pose at double size must normalize to the same points.
	hand := OpenPalmLandmarks()
	scaled := hand
	for i := range scaled.Points {
		scaled.Points[i].X *= 2
		scaled.Points[i].Y *= 2
		scaled.Points[i].Z *= 2
	}

	a := hand.Normalize()
	b := scaled.Normalize()

	for i := 0; i < NumLandmarks; i++ {
		if math.Abs(a.Points[i].X-b.Points[i].X) > 1e-9 ||
			math.Abs(a.Points[i].Y-b.Points[i].Y) > 1e-9 {
			t.Fatalf("landmark %d differs after scaling: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}

func TestMockDetector_Queue(t *testing.T) {
	mock := NewMockDetector()
	mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
	mock.QueueHands([]HandLandmarks{FistLandmarks()})
	mock.QueueHands(nil)

	// Queued results are consumed first, then the default applies.
	hands, err := mock.Detect(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hands) != 1 || hands[0].Points[IndexTip] != FistLandmarks().Points[IndexTip] {
		t.Error("expected first queued result (fist)")
	}

	hands, _ = mock.Detect(nil)
	if len(hands) != 0 {
		t.Errorf("expected second queued result (no hands), got %d", len(hands))
	}

	hands, _ = mock.Detect(nil)
	if len(hands) != 1 {
		t.Errorf("expected fallback to default hands, got %d", len(hands))
	}
}

func TestMockDetector_Error(t *testing.T) {
	mock := NewMockDetector()
	wantErr := errors.New("detector offline")
	mock.SetError(wantErr)

	if _, err := mock.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}
}
