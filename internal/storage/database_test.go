package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

var conversationTables = []string{"documents", "sessions", "user_queries", "chat_responses", "response_citations", "conversation_turns"}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "temp dir", path: filepath.Join(t.TempDir(), "bookrag.db")},
		{name: "missing parent directory", path: "/nonexistent/path/bookrag.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.path)
			if tt.wantErr {
				if err == nil {
					_ = db.Close()
					t.Fatal("New() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer func() {
				_ = db.Close()
			}()

			if got := db.Stats().MaxOpenConnections; got != 25 {
				t.Errorf("New() MaxOpenConnections = %v, want 25", got)
			}
			var fkEnabled int
			if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
				t.Fatalf("failed to read foreign_keys pragma: %v", err)
			}
			if fkEnabled != 1 {
				t.Error("New() should enable foreign keys")
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	for _, runs := range []int{1, 2} {
		db, err := New(filepath.Join(t.TempDir(), "bookrag.db"))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		for i := 0; i < runs; i++ {
			if err := Migrate(db); err != nil {
				t.Fatalf("Migrate() run %d error = %v", i+1, err)
			}
		}

		for _, table := range conversationTables {
			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count); err != nil {
				t.Fatalf("failed to look up table %s: %v", table, err)
			}
			if count != 1 {
				t.Errorf("Migrate() x%d: table %s missing", runs, table)
			}
		}
		_ = db.Close()
	}
}

func TestMigrate_AddsIndexVersionToExistingDocuments(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "bookrag.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	legacy := `CREATE TABLE documents (
		source_url TEXT PRIMARY KEY,
		rel_path TEXT NOT NULL,
		title TEXT NOT NULL,
		hash TEXT NOT NULL,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(legacy); err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO documents (source_url, rel_path, title, hash) VALUES ('/docs/a', 'a.md', 'A', 'h')`); err != nil {
		t.Fatalf("failed to seed legacy row: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	doc, err := NewDocumentRepo(db).Get(context.Background(), "/docs/a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.IndexVersion != "" {
		t.Errorf("IndexVersion = %q, want empty for legacy row", doc.IndexVersion)
	}
}

func TestMigrate_SessionDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	now := "2026-03-01 09:00:00"

	stmts := []string{
		`INSERT INTO sessions (id, created_at, last_activity) VALUES ('s1', '` + now + `', '` + now + `')`,
		`INSERT INTO user_queries (id, session_id, query_text, query_mode, created_at) VALUES ('q1', 's1', 'What is ZMP?', 'book-wide', '` + now + `')`,
		`INSERT INTO chat_responses (id, query_id, response_text, confidence_score, response_time_ms, created_at) VALUES ('r1', 'q1', 'The zero moment point.', 0.8, 12, '` + now + `')`,
		`INSERT INTO response_citations (response_id, position, source_url, title, citation_text, relevance_score) VALUES ('r1', 0, '/docs/zmp', 'ZMP', 'zero moment', 0.8)`,
		`INSERT INTO conversation_turns (session_id, turn_number, query_id, response_id) VALUES ('s1', 1, 'q1', 'r1')`,
		`DELETE FROM sessions WHERE id = 's1'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}

	for _, table := range conversationTables[2:] {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s has %d rows after session delete, want 0", table, count)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "sqlite current_timestamp", input: "2025-03-14 09:26:53"},
		{name: "rfc3339", input: "2025-03-14T09:26:53Z"},
		{name: "driver format", input: "2025-03-14 09:26:53+00:00"},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTimestamp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(want) {
				t.Errorf("parseTimestamp() = %v, want %v", got, want)
			}
		})
	}
}

// newTestDB opens a migrated database in a temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}
