package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// Foreign keys are enabled on every pooled connection and writers wait on a busy lock.
func New(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			source_url TEXT PRIMARY KEY,
			rel_path TEXT NOT NULL,
			title TEXT NOT NULL,
			hash TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			index_version TEXT NOT NULL DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			created_at DATETIME NOT NULL,
			last_activity DATETIME NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			metadata TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS user_queries (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			query_text TEXT NOT NULL,
			query_mode TEXT NOT NULL,
			selected_text TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS chat_responses (
			id TEXT PRIMARY KEY,
			query_id TEXT NOT NULL,
			response_text TEXT NOT NULL,
			confidence_score REAL NOT NULL,
			response_time_ms INTEGER NOT NULL,
			citations TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (query_id) REFERENCES user_queries(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS response_citations (
			response_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			source_url TEXT NOT NULL,
			title TEXT NOT NULL,
			citation_text TEXT NOT NULL,
			relevance_score REAL NOT NULL,
			PRIMARY KEY (response_id, position),
			FOREIGN KEY (response_id) REFERENCES chat_responses(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_turns (
			session_id TEXT NOT NULL,
			turn_number INTEGER NOT NULL,
			query_id TEXT NOT NULL,
			response_id TEXT NOT NULL,
			PRIMARY KEY (session_id, turn_number),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
			FOREIGN KEY (query_id) REFERENCES user_queries(id) ON DELETE CASCADE,
			FOREIGN KEY (response_id) REFERENCES chat_responses(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_user_queries_session ON user_queries(session_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Databases created before documents carried an index version.
	return addColumn(db, "documents", "index_version", "TEXT NOT NULL DEFAULT ''")
}

// addColumn adds a column to table unless it already exists.
func addColumn(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &primaryKey); err != nil {
			return fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	_ = rows.Close()

	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// timestampLayouts are the forms SQLite hands back for DATETIME columns.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", s)
}
