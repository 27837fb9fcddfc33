package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks bookrag-ai/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks bookrag-ai/internal/rag Searcher

import (
	"context"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/vectorstore"
)

// Mode selects how a question is answered.
type Mode string

const (
	// ModeBookWide searches the whole book.
	ModeBookWide Mode = "book-wide"
	// ModeSelectedText focuses the search on a passage the reader selected.
	ModeSelectedText Mode = "selected-text"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeBookWide || m == ModeSelectedText
}

// Result is a search hit with the commonly used payload fields pulled out.
type Result struct {
	vectorstore.SearchResult
	SourceURL     string `json:"source_url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	HierarchyPath string `json:"hierarchy_path"`
}

// Answer is the outcome of a question in either mode.
type Answer struct {
	// Text is the generated answer, or a transparency message when nothing relevant was found.
	Text string
	// Citations are ordered by relevance, highest first.
	Citations []citation.Citation
	// Confidence is the rank-weighted mean similarity in [0, 1].
	Confidence float64
	Mode       Mode
	// Sources are the retrieved results the answer was grounded on.
	Sources []Result
	// Model is the completion model that produced Text. Empty when no completion was made.
	Model string
}

// Searcher finds book content similar to a free-text query.
type Searcher interface {
	// SearchContent returns up to limit results in descending score order.
	SearchContent(ctx context.Context, query string, limit int, filters map[string]any) ([]Result, error)
}

// Engine answers reader questions using retrieved book content.
type Engine interface {
	// QueryBookWide answers a question from the whole book.
	QueryBookWide(ctx context.Context, query string) (Answer, error)
	// QuerySelectedText answers a question about a passage the reader selected.
	QuerySelectedText(ctx context.Context, query, selectedText string) (Answer, error)
}

// searchHits returns the raw hits behind results.
func searchHits(results []Result) []vectorstore.SearchResult {
	hits := make([]vectorstore.SearchResult, len(results))
	for i, r := range results {
		hits[i] = r.SearchResult
	}
	return hits
}
