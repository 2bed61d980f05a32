package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/repository"
)

// SessionRepository implements session.Repository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Touch inserts a session or refreshes last_accessed on an existing one.
// Existing session data is kept when sess.Data is nil.
func (r *SessionRepository) Touch(ctx context.Context, sess *session.Session) error {
	var data sql.NullString
	if sess.Data != nil {
		encoded, err := encodeJSON(sess.Data)
		if err != nil {
			return fmt.Errorf("failed to encode session data: %w", err)
		}
		data = sql.NullString{String: encoded, Valid: true}
	}

	query := `
		INSERT INTO user_sessions (id, session_data, created_at, last_accessed)
		VALUES (?, COALESCE(?, '{}'), ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_data = COALESCE(?, user_sessions.session_data),
			last_accessed = excluded.last_accessed
	`
	_, err := r.db.ExecContext(ctx, query, sess.ID, data, sess.CreatedAt, sess.LastAccessed, data)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT id, session_data, created_at, last_accessed FROM user_sessions WHERE id = ?`

	var sess session.Session
	var data string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sess.ID, &data, &sess.CreatedAt, &sess.LastAccessed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	decoded, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}
	sess.Data = decoded
	return &sess, nil
}

// DeleteIdleSince removes sessions last accessed before cutoff
func (r *SessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE last_accessed < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
