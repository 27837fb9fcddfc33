package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks bookrag-ai/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

var (
	// ErrInvalidLimit is returned when a search limit is not positive.
	ErrInvalidLimit = errors.New("limit must be greater than 0")
	// ErrUnsupportedFilter is returned when a filter value has a type that cannot be matched exactly.
	ErrUnsupportedFilter = errors.New("unsupported filter value")
)

// Point represents a vector point with its payload.
type Point struct {
	ID      string
	Vec     []float32
	Payload map[string]any
}

// SearchResult represents a search hit. Higher scores are more similar.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	Name        string `json:"name"`
	VectorSize  int    `json:"vector_size"`
	PointsCount int    `json:"points_count"`
	Status      string `json:"status"`
}

// VectorStore defines the interface for vector storage operations.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// EnsureCollection creates the collection with cosine distance if it does not exist.
	// An existing collection must have the same vector size.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert inserts or replaces points by ID.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to limit results in descending score order.
	// Each filter entry must match the payload field exactly; entries are combined with AND.
	Search(ctx context.Context, collection string, query []float32, limit int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// Count returns the exact number of points in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionInfo returns size, point count and status for a collection.
	CollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Health returns the server version when the store is reachable.
	Health(ctx context.Context) (string, error)
}
