package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks bookrag-ai/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConversationStore defines the interface for conversation history storage.
type ConversationStore interface {
	// SaveTurn stores a query, its response and citations as the next turn of the session.
	// Empty IDs are filled in and TurnNumber is assigned.
	SaveTurn(ctx context.Context, turn *Turn) error
	// ListTurns returns the turns of a session in order.
	ListTurns(ctx context.Context, sessionID string) ([]Turn, error)
	// DeleteBySession removes every turn of a session and returns how many were removed.
	DeleteBySession(ctx context.Context, sessionID string) (int, error)
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// SaveTurn writes the query, response, citations and turn in one transaction.
func (r *ConversationRepo) SaveTurn(ctx context.Context, turn *Turn) (err error) {
	q := &turn.Query
	resp := &turn.Response

	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = now
	}
	q.SessionID = turn.SessionID
	resp.QueryID = q.ID
	for i := range resp.Citations {
		resp.Citations[i].Position = i
	}

	citations := resp.Citations
	if citations == nil {
		citations = []CitationRecord{}
	}
	citationsJSON, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("failed to encode citations: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO user_queries (id, session_id, query_text, query_mode, selected_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.SessionID, q.Text, q.Mode, nullString(q.SelectedText), q.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO chat_responses (id, query_id, response_text, confidence_score, response_time_ms, citations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.QueryID, resp.Text, resp.Confidence, resp.ResponseTimeMS, string(citationsJSON), resp.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}

	for _, c := range resp.Citations {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO response_citations (response_id, position, source_url, title, citation_text, relevance_score)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			resp.ID, c.Position, c.SourceURL, c.Title, c.Text, c.Relevance,
		); err != nil {
			return fmt.Errorf("failed to insert citation: %w", err)
		}
	}

	var next int
	if err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(turn_number), 0) + 1 FROM conversation_turns WHERE session_id = ?",
		turn.SessionID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to get next turn number: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO conversation_turns (session_id, turn_number, query_id, response_id) VALUES (?, ?, ?, ?)",
		turn.SessionID, next, q.ID, resp.ID,
	); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}

	turn.TurnNumber = next
	return nil
}

// ListTurns returns the turns of a session ordered by turn number.
func (r *ConversationRepo) ListTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.turn_number,
		        q.id, q.query_text, q.query_mode, q.selected_text, q.created_at,
		        r.id, r.response_text, r.confidence_score, r.response_time_ms, r.citations, r.created_at
		 FROM conversation_turns t
		 JOIN user_queries q ON q.id = t.query_id
		 JOIN chat_responses r ON r.id = t.response_id
		 WHERE t.session_id = ?
		 ORDER BY t.turn_number`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		var selected sql.NullString
		var queryCreated, responseCreated, citationsJSON string

		if err := rows.Scan(
			&turn.TurnNumber,
			&turn.Query.ID, &turn.Query.Text, &turn.Query.Mode, &selected, &queryCreated,
			&turn.Response.ID, &turn.Response.Text, &turn.Response.Confidence, &turn.Response.ResponseTimeMS,
			&citationsJSON, &responseCreated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}

		turn.SessionID = sessionID
		turn.Query.SessionID = sessionID
		turn.Query.SelectedText = selected.String
		turn.Response.QueryID = turn.Query.ID
		if turn.Query.CreatedAt, err = parseTimestamp(queryCreated); err != nil {
			return nil, err
		}
		if turn.Response.CreatedAt, err = parseTimestamp(responseCreated); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(citationsJSON), &turn.Response.Citations); err != nil {
			return nil, fmt.Errorf("failed to decode citations: %w", err)
		}

		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return turns, nil
}

// DeleteBySession removes the session's queries; responses, citations and turns cascade.
func (r *ConversationRepo) DeleteBySession(ctx context.Context, sessionID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var turns int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM conversation_turns WHERE session_id = ?", sessionID,
	).Scan(&turns); err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM user_queries WHERE session_id = ?", sessionID); err != nil {
		return 0, fmt.Errorf("failed to delete queries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return turns, nil
}
