package storage

import "time"

// DocumentRecord tracks an ingested source file.
type DocumentRecord struct {
	SourceURL  string // Primary key, e.g. "/docs/intro"
	RelPath    string // Path relative to the markdown root
	Title      string
	Hash       string // SHA256 hex string of file content
	ChunkCount int    // Number of chunks written for the current hash
	// IndexVersion identifies the chunker and embedding settings the chunks were built with
	IndexVersion string
	UpdatedAt  time.Time
}

// Session is a reader's chat session.
type Session struct {
	ID           string // UUID
	UserID       string // Optional
	CreatedAt    time.Time
	LastActivity time.Time
	IsActive     bool
	Metadata     map[string]any
}

// QueryRecord is a question asked within a session.
type QueryRecord struct {
	ID           string
	SessionID    string
	Text         string
	Mode         string // "book-wide" or "selected-text"
	SelectedText string
	CreatedAt    time.Time
}

// CitationRecord is one source reference attached to a response.
type CitationRecord struct {
	Position  int     `json:"position"`
	SourceURL string  `json:"source_url"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance_score"`
}

// ResponseRecord is the answer given to a query.
type ResponseRecord struct {
	ID             string
	QueryID        string
	Text           string
	Confidence     float64
	ResponseTimeMS int64
	Citations      []CitationRecord
	CreatedAt      time.Time
}

// Turn pairs a query with its response at a position in a conversation.
type Turn struct {
	SessionID  string
	TurnNumber int // Starts at 1
	Query      QueryRecord
	Response   ResponseRecord
}
