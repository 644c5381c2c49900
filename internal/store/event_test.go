package store

import (
	"testing"
	"time"
)

func beginSession(t *testing.T, s *Store) *Session {
	t.Helper()

	session, err := s.Sessions().Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	return session
}

func TestEventRepository_AppendAndBySession(t *testing.T) {
	s := newTestStore(t)
	session := beginSession(t, s)

	batch := []*Event{
		{State: "enabled", Message: "actuation enabled after start hold"},
		{State: "await-confirm", Message: "pending confirmation for ClockWise"},
	}
	if err := s.Events().Append(session.ID, batch); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := s.Events().BySession(session.ID)
	if err != nil {
		t.Fatalf("BySession() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("BySession() returned %d events, want 2", len(events))
	}
	if events[0].Seq != 1 || events[1].Seq != 2 {
		t.Errorf("events should be numbered 1, 2; got %d, %d", events[0].Seq, events[1].Seq)
	}
	if events[0].State != "enabled" {
		t.Errorf("first event state = %q, want %q", events[0].State, "enabled")
	}
}

func TestEventRepository_AppendContinuesSequence(t *testing.T) {
	s := newTestStore(t)
	session := beginSession(t, s)

	if err := s.Events().Append(session.ID, []*Event{{State: "enabled", Message: "a"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Events().Append(session.ID, []*Event{{State: "running", Message: "b"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := s.Events().BySession(session.ID)
	if err != nil {
		t.Fatalf("BySession() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Seq != 2 {
		t.Errorf("second batch should continue the sequence, got seq %d", events[1].Seq)
	}
}

func TestEventRepository_AppendEmptyBatch(t *testing.T) {
	s := newTestStore(t)
	session := beginSession(t, s)

	if err := s.Events().Append(session.ID, nil); err != nil {
		t.Errorf("Append() with empty batch should be a no-op, got %v", err)
	}
}

func TestEventRepository_Recent(t *testing.T) {
	s := newTestStore(t)
	session := beginSession(t, s)

	base := time.Now()
	var batch []*Event
	for i := 0; i < 5; i++ {
		batch = append(batch, &Event{
			State:     "enabled",
			Message:   "tick",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := s.Events().Append(session.ID, batch); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := s.Events().Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Recent(3) returned %d events, want 3", len(events))
	}
	// Newest first
	if events[0].Seq != 5 {
		t.Errorf("Recent() first event seq = %d, want 5", events[0].Seq)
	}
}

func TestEventRepository_CascadeDelete(t *testing.T) {
	s := newTestStore(t)
	session := beginSession(t, s)

	if err := s.Events().Append(session.ID, []*Event{{State: "enabled", Message: "a"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if _, err := s.DB().Exec(`DELETE FROM sessions WHERE id = ?`, session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	events, err := s.Events().BySession(session.ID)
	if err != nil {
		t.Fatalf("BySession() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events should cascade on session delete, got %d", len(events))
	}
}
