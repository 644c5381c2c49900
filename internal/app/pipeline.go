package app

import (
	"log"
	"time"

	"github.com/renderix/mudra/internal/detector"
	"github.com/renderix/mudra/internal/gesture"
	"github.com/renderix/mudra/internal/store"
)

// run is the control loop. One tick reads a frame, classifies the hand,
// advances the state machine, and flushes its events.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(a.config.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick processes one control loop iteration.
func (a *App) tick() {
	static, dynamic := a.observe()

	a.engine.Update(static, dynamic, a.actuator)

	if a.metrics != nil {
		a.metrics.Ticks.Inc()
	}

	a.flushEvents()

	a.mu.Lock()
	a.status.State = a.engine.State().String()
	a.status.Pending = string(a.engine.PendingSelection())
	a.status.LastStatic = string(static)
	a.status.LastDynamic = string(dynamic)
	a.status.Ticks++
	a.status.UpdatedAt = time.Now()
	a.mu.Unlock()
}

// observe reads one frame and classifies the hand pose and, while pointing,
// the fingertip rotation direction. Any failure along the way degrades to
// "nothing observed"; the state machine treats that the same as no hand.
func (a *App) observe() (gesture.Static, gesture.Dynamic) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return a.classify(nil)
	}

	hands, err := a.detector.Detect(frame)
	if frame != nil {
		frame.Close()
	}
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return a.classify(nil)
	}

	if len(hands) == 0 {
		return a.classify(nil)
	}
	return a.classify(&hands[0])
}

// classify turns a detected hand (or none) into the tick's gesture labels.
// The rotation path only accumulates while the pointing pose is held; any
// other pose clears it, so a new gesture always starts from an empty path.
func (a *App) classify(hand *detector.HandLandmarks) (gesture.Static, gesture.Dynamic) {
	static := gesture.ClassifyStatic(hand)

	if static != gesture.StaticPoint {
		a.pathBuffer = a.pathBuffer[:0]
		a.history.Reset()
		return static, gesture.DynamicNone
	}

	tip := hand.Points[detector.IndexTip]
	if len(a.pathBuffer) >= PathBufferSize {
		copy(a.pathBuffer, a.pathBuffer[1:])
		a.pathBuffer = a.pathBuffer[:PathBufferSize-1]
	}
	a.pathBuffer = append(a.pathBuffer, gesture.PathPoint{
		X:         tip.X,
		Y:         tip.Y,
		Timestamp: time.Now().UnixMilli(),
	})

	a.history.Push(gesture.RotationDirection(a.pathBuffer))
	return static, a.history.Majority()
}

// flushEvents drains the engine's event buffer into the log and, when a
// session is open, the database.
func (a *App) flushEvents() {
	entries := a.engine.Drain()
	if len(entries) == 0 {
		return
	}

	events := make([]*store.Event, 0, len(entries))
	for _, entry := range entries {
		log.Printf("[%s] %s", entry.State, entry.Message)
		events = append(events, &store.Event{
			State:     entry.State.String(),
			Message:   entry.Message,
			CreatedAt: entry.Time,
		})
	}

	if a.store != nil && a.session != nil {
		if err := a.store.Events().Append(a.session.ID, events); err != nil {
			log.Printf("Error persisting events: %v", err)
		}
	}
}
