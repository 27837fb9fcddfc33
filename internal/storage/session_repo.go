package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks bookrag-ai/internal/storage SessionStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines the interface for chat session storage.
type SessionStore interface {
	// Create inserts a new session. An empty ID is replaced by a new UUID.
	Create(ctx context.Context, session *Session) error
	// Get returns the session with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Touch records activity on a session and reactivates it, or returns ErrNotFound.
	Touch(ctx context.Context, id string) error
	// Deactivate marks a session inactive, or returns ErrNotFound.
	Deactivate(ctx context.Context, id string) error
}

// SessionRepo provides methods for session operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new active session.
func (r *SessionRepo) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := r.now()
	session.CreatedAt = now
	session.LastActivity = now
	session.IsActive = true

	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode session metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, last_activity, is_active, metadata)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		session.ID, nullString(session.UserID), now, now, string(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get returns the session with the given ID.
func (r *SessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	var session Session
	var userID, metadata sql.NullString
	var createdAtStr, lastActivityStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, last_activity, is_active, metadata FROM sessions WHERE id = ?",
		id,
	).Scan(&session.ID, &userID, &createdAtStr, &lastActivityStr, &session.IsActive, &metadata)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.UserID = userID.String
	if session.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	if session.LastActivity, err = parseTimestamp(lastActivityStr); err != nil {
		return nil, err
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &session.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode session metadata: %w", err)
		}
	}

	return &session, nil
}

// Touch sets last_activity to now and marks the session active again.
func (r *SessionRepo) Touch(ctx context.Context, id string) error {
	return r.update(ctx, "UPDATE sessions SET last_activity = ?, is_active = 1 WHERE id = ?", r.now(), id)
}

// Deactivate marks the session inactive.
func (r *SessionRepo) Deactivate(ctx context.Context, id string) error {
	return r.update(ctx, "UPDATE sessions SET is_active = 0, last_activity = ? WHERE id = ?", r.now(), id)
}

func (r *SessionRepo) update(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
