package indexer

import "github.com/google/uuid"

// ChunkMetadata is the structural metadata attached to a chunk and stored
// under the "metadata" key of its vector payload.
type ChunkMetadata struct {
	SourceURL     string
	HierarchyPath string
	Title         string
	SectionHeader string // Header line that opened the section, empty for preamble text
	ChunkIndex    int    // Part index within an oversized section (starts at 0)
	IsPart        bool   // Set when the section was split into numbered parts
}

// Map converts metadata to a payload-friendly map. Optional fields are omitted when unset.
func (m ChunkMetadata) Map() map[string]any {
	out := map[string]any{
		"source_url":     m.SourceURL,
		"hierarchy_path": m.HierarchyPath,
		"title":          m.Title,
	}
	if m.SectionHeader != "" {
		out["section_header"] = m.SectionHeader
	}
	if m.IsPart {
		out["chunk_index"] = m.ChunkIndex
	}
	return out
}

// ContentChunk is one bounded passage of a source document.
type ContentChunk struct {
	ID            string // "{source_url with / replaced by _}_{ordinal}"
	Text          string
	SourceURL     string
	Title         string
	HierarchyPath string
	Metadata      ChunkMetadata
}

// PointID maps a chunk ID onto the UUID used as its vector point ID.
// Re-ingesting a chunk with the same ID overwrites the same point.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}
