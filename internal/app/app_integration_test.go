package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/renderix/mudra/internal/capture"
	"github.com/renderix/mudra/internal/detector"
	"github.com/renderix/mudra/internal/fsm"
	"github.com/renderix/mudra/internal/metrics"
	"github.com/renderix/mudra/internal/robot"
	"github.com/renderix/mudra/internal/store"
)

// newTestCamera builds a looping MockCamera over a single blank frame. The
// mock detector ignores frame contents, so the frame only has to exist.
func newTestCamera(t *testing.T) *capture.MockCamera {
	t.Helper()

	frame := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	return capture.NewMockCamera([]*gocv.Mat{&frame}, true)
}

func newTestApp(t *testing.T, withStore bool) (*App, *detector.MockDetector, *robot.Simulator) {
	t.Helper()

	mock := detector.NewMockDetector()
	sim := robot.NewSimulator()

	var st *store.Store
	if withStore {
		tmpDir, err := os.MkdirTemp("", "mudra-test-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		t.Cleanup(func() { os.RemoveAll(tmpDir) })

		st, err = store.New(filepath.Join(tmpDir, "test.db"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { st.Close() })
	}

	cfg := Config{
		Engine: fsm.Config{
			StartHold:      50 * time.Millisecond,
			StopHold:       50 * time.Millisecond,
			ConfirmTimeout: time.Second,
			PulseDuration:  time.Millisecond,
			MaxRunningTime: time.Second,
			ConfirmCount:   3,
		},
		TickRate:  100,
		Simulated: true,
	}

	return New(cfg, newTestCamera(t), mock, sim, st, metrics.New()), mock, sim
}

// waitForState polls the status snapshot until the loop reaches the wanted
// state or the deadline passes.
func waitForState(t *testing.T, a *App, want string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if a.Status().State == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %q, still %q", want, a.Status().State)
}

func TestApp_OpenPalmEnablesActuation(t *testing.T) {
	a, mock, sim := newTestApp(t, false)
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitForState(t, a, "enabled")

	if !sim.Enabled() {
		t.Error("simulator should report actuation enabled")
	}

	status := a.Status()
	if status.LastStatic != "Open" {
		t.Errorf("LastStatic = %q, want %q", status.LastStatic, "Open")
	}
	if status.Ticks == 0 {
		t.Error("loop should have processed ticks")
	}
}

func TestApp_FistDisablesFromEnabled(t *testing.T) {
	a, mock, sim := newTestApp(t, false)
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	waitForState(t, a, "enabled")

	mock.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})
	waitForState(t, a, "disabled")

	if sim.Enabled() {
		t.Error("simulator should report actuation disabled after stop gesture")
	}
}

func TestApp_NoHandStaysDisabled(t *testing.T) {
	a, _, sim := newTestApp(t, false)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	a.Stop()

	if got := a.Status().State; got != "disabled" {
		t.Errorf("state = %q, want %q", got, "disabled")
	}
	if len(sim.Calls()) != 0 {
		t.Errorf("no actuator calls expected, got %v", sim.Calls())
	}
}

func TestApp_PersistsSessionAndEvents(t *testing.T) {
	a, mock, _ := newTestApp(t, true)
	mock.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sessionID := a.Status().SessionID
	if sessionID == "" {
		t.Fatal("a session should be open after Start()")
	}

	waitForState(t, a, "enabled")
	a.Stop()

	session, err := a.store.Sessions().GetByID(sessionID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !session.EndedAt.Valid {
		t.Error("session should be ended after Stop()")
	}
	if session.FinalState != "enabled" {
		t.Errorf("FinalState = %q, want %q", session.FinalState, "enabled")
	}

	events, err := a.store.Events().BySession(sessionID)
	if err != nil {
		t.Fatalf("BySession() error = %v", err)
	}
	if len(events) == 0 {
		t.Fatal("the enable transition should have been persisted")
	}
	if events[0].State != "enabled" {
		t.Errorf("first event state = %q, want %q", events[0].State, "enabled")
	}
}

func TestApp_StartIsIdempotent(t *testing.T) {
	a, _, _ := newTestApp(t, false)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Errorf("second Start() should be a no-op, got %v", err)
	}
	a.Stop()

	// Stop on a stopped app is also safe.
	a.Stop()
}
