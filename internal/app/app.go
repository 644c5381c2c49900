// Package app runs the gesture control loop for the mudra daemon.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/renderix/mudra/internal/capture"
	"github.com/renderix/mudra/internal/detector"
	"github.com/renderix/mudra/internal/fsm"
	"github.com/renderix/mudra/internal/gesture"
	"github.com/renderix/mudra/internal/metrics"
	"github.com/renderix/mudra/internal/robot"
	"github.com/renderix/mudra/internal/store"
)

// Loop constants.
const (
	// DefaultTickRate is the control loop rate in ticks per second.
	DefaultTickRate = 15
	// DefaultHistorySize is the rotation label smoothing window.
	DefaultHistorySize = 8
	// PathBufferSize is the maximum number of fingertip positions kept for
	// rotation classification.
	PathBufferSize = 60
)

// Config holds configuration options for the application.
type Config struct {
	Engine      fsm.Config
	TickRate    int
	HistorySize int
	Simulated   bool
}

// Status is a snapshot of the control loop, safe to read from any goroutine.
type Status struct {
	State       string    `json:"state"`
	Pending     string    `json:"pending,omitempty"`
	LastStatic  string    `json:"last_static,omitempty"`
	LastDynamic string    `json:"last_dynamic,omitempty"`
	Ticks       uint64    `json:"ticks"`
	SessionID   string    `json:"session_id,omitempty"`
	Simulated   bool      `json:"simulated"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// App owns the control loop: it reads frames, classifies gestures, advances
// the state machine, and fans events out to the log, database, and metrics.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	actuator robot.Actuator
	engine   *fsm.Engine
	history  *gesture.History
	store    *store.Store
	metrics  *metrics.Metrics

	session    *store.Session
	pathBuffer []gesture.PathPoint

	mu     sync.RWMutex
	status Status
	stopCh chan struct{}
	done   chan struct{}
}

// New creates an App. Store and metrics may be nil; camera, detector, and
// actuator are required.
func New(config Config, camera capture.Camera, det detector.Detector, act robot.Actuator, st *store.Store, m *metrics.Metrics) *App {
	if config.TickRate <= 0 {
		config.TickRate = DefaultTickRate
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}

	a := &App{
		config:     config,
		camera:     camera,
		detector:   det,
		actuator:   act,
		engine:     fsm.New(config.Engine),
		history:    gesture.NewHistory(config.HistorySize),
		store:      st,
		metrics:    m,
		pathBuffer: make([]gesture.PathPoint, 0, PathBufferSize),
	}

	a.engine.OnTransition = func(from, to fsm.State) {
		log.Printf("state %s -> %s", from, to)
		if a.metrics != nil {
			a.metrics.Transitions.WithLabelValues(from.String(), to.String()).Inc()
		}
	}

	a.status = Status{
		State:     a.engine.State().String(),
		Simulated: config.Simulated,
		UpdatedAt: time.Now(),
	}

	return a
}

// Start opens the camera, begins a database session, and starts the loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	if a.store != nil {
		session, err := a.store.Sessions().Begin()
		if err != nil {
			a.camera.Close()
			return err
		}
		a.session = session
		a.status.SessionID = session.ID
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.Printf("control loop started at %d ticks/s", a.config.TickRate)
	return nil
}

// Stop halts the loop, flushes pending events, closes the session, and
// releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh = nil
	a.done = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	// The loop is stopped; drain whatever it had not flushed yet.
	a.flushEvents()

	if a.session != nil && a.store != nil {
		if err := a.store.Sessions().End(a.session.ID, a.engine.State().String()); err != nil {
			log.Printf("Error ending session: %v", err)
		}
		a.session = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("control loop stopped")
}

// Status returns the latest loop snapshot.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}
