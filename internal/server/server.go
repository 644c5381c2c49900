// Package server provides the local HTTP API for the mudra daemon.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/renderix/mudra/internal/app"
	"github.com/renderix/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Store   *store.Store
	Status  func() app.Status
	Metrics http.Handler
}

// Server is the HTTP API for inspecting the running daemon.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Status != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/ws", NewStatusHandler(s.config.Status))
	}

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/events", s.handleEvents)
		s.mux.HandleFunc("/api/sessions", s.handleSessions)
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.config.Status())
}

// handleEvents handles GET requests to /api/events.
// Query parameters: session to scope to one session, limit for the
// cross-session recent view (default 50).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		events []*store.Event
		err    error
	)

	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		events, err = s.config.Store.Events().BySession(sessionID)
	} else {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err = s.config.Store.Events().Recent(limit)
	}

	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	writeJSON(w, eventsResponse{Events: toAPIEvents(events)})
}

// handleSessions handles GET requests to /api/sessions.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := s.config.Store.Sessions().List()
	if err != nil {
		http.Error(w, "Failed to load sessions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, sessionsResponse{Sessions: toAPISessions(sessions)})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type apiEvent struct {
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	State     string    `json:"state"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type eventsResponse struct {
	Events []apiEvent `json:"events"`
}

func toAPIEvents(events []*store.Event) []apiEvent {
	out := make([]apiEvent, len(events))
	for i, e := range events {
		out[i] = apiEvent{
			SessionID: e.SessionID,
			Seq:       e.Seq,
			State:     e.State,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}

type apiSession struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FinalState string     `json:"final_state,omitempty"`
}

type sessionsResponse struct {
	Sessions []apiSession `json:"sessions"`
}

func toAPISessions(sessions []*store.Session) []apiSession {
	out := make([]apiSession, len(sessions))
	for i, s := range sessions {
		out[i] = apiSession{
			ID:         s.ID,
			StartedAt:  s.StartedAt,
			FinalState: s.FinalState,
		}
		if s.EndedAt.Valid {
			ended := s.EndedAt.Time
			out[i].EndedAt = &ended
		}
	}
	return out
}
