package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session represents one daemon run.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    sql.NullTime
	FinalState string
}

// SessionRepository provides operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Begin inserts a new session and returns it. The session ID is a
// generated UUID.
func (r *SessionRepository) Begin() (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		session.ID, session.StartedAt,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// End marks a session as finished and records the state it ended in.
func (r *SessionRepository) End(id, finalState string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, final_state = ? WHERE id = ?`,
		time.Now(), finalState, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	session := &Session{}
	var finalState sql.NullString

	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, final_state FROM sessions WHERE id = ?`,
		id,
	).Scan(&session.ID, &session.StartedAt, &session.EndedAt, &finalState)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	session.FinalState = finalState.String
	return session, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, final_state
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		var finalState sql.NullString

		err := rows.Scan(&session.ID, &session.StartedAt, &session.EndedAt, &finalState)
		if err != nil {
			return nil, err
		}

		session.FinalState = finalState.String
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
