package store

import (
	"database/sql"
	"time"
)

// Event is one state machine log entry persisted for a session.
type Event struct {
	ID        int64
	SessionID string
	Seq       int
	State     string
	Message   string
	CreatedAt time.Time
}

// EventRepository provides operations for events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append inserts a batch of events in one transaction, numbering them
// after the session's current highest sequence.
func (r *EventRepository) Append(sessionID string, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE session_id = ?`,
		sessionID,
	).Scan(&seq)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO events (session_id, seq, state, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		seq++
		e.SessionID = sessionID
		e.Seq = seq
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		if _, err := stmt.Exec(sessionID, seq, e.State, e.Message, e.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// BySession retrieves all events for a session in sequence order.
func (r *EventRepository) BySession(sessionID string) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, state, message, created_at
		 FROM events WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Recent retrieves the most recent events across all sessions, newest
// first. A non-positive limit defaults to 50.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, seq, state, message, created_at
		 FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var events []*Event
	for rows.Next() {
		e := &Event{}
		err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.State, &e.Message, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
