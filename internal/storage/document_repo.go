package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks bookrag-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for ingested document bookkeeping.
type DocumentStore interface {
	// Get returns the document with the given source URL.
	// Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, sourceURL string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// List returns all documents ordered by source URL.
	List(ctx context.Context) ([]DocumentRecord, error)
	// Delete removes the document with the given source URL.
	Delete(ctx context.Context, sourceURL string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Get returns the document with the given source URL.
func (r *DocumentRepo) Get(ctx context.Context, sourceURL string) (*DocumentRecord, error) {
	var doc DocumentRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT source_url, rel_path, title, hash, chunk_count, index_version, updated_at FROM documents WHERE source_url = ?",
		sourceURL,
	).Scan(&doc.SourceURL, &doc.RelPath, &doc.Title, &doc.Hash, &doc.ChunkCount, &doc.IndexVersion, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// Upsert inserts a new document or updates the existing row for its source URL.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (source_url, rel_path, title, hash, chunk_count, index_version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (source_url) DO UPDATE SET
		 rel_path = excluded.rel_path, title = excluded.title, hash = excluded.hash,
		 chunk_count = excluded.chunk_count, index_version = excluded.index_version,
		 updated_at = CURRENT_TIMESTAMP`,
		doc.SourceURL, doc.RelPath, doc.Title, doc.Hash, doc.ChunkCount, doc.IndexVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// List returns all documents ordered by source URL.
func (r *DocumentRepo) List(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT source_url, rel_path, title, hash, chunk_count, index_version, updated_at FROM documents ORDER BY source_url",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var updatedAtStr string
		if err := rows.Scan(&doc.SourceURL, &doc.RelPath, &doc.Title, &doc.Hash, &doc.ChunkCount, &doc.IndexVersion, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if doc.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes the document with the given source URL.
// Returns ErrNotFound if no such document exists.
func (r *DocumentRepo) Delete(ctx context.Context, sourceURL string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE source_url = ?", sourceURL)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
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
