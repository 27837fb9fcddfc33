package indexer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChunkSize is the default upper bound on chunk text length, in characters.
	DefaultMaxChunkSize = 1000
	// DefaultChunkOverlap is the default overlap between hard-split windows, in characters.
	DefaultChunkOverlap = 100
)

var (
	headerPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	sentencePattern = regexp.MustCompile(`[.!?]\s+`)
)

// Chunker splits markdown text into hierarchy-aware, size-bounded chunks.
// Lengths are measured in runes.
type Chunker struct {
	maxSize int
	overlap int
}

// NewChunker creates a chunker. overlap must be smaller than maxSize.
func NewChunker(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be greater than 0")
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("chunk overlap must be between 0 and %d", maxSize-1)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// MaxSize returns the configured maximum chunk length.
func (c *Chunker) MaxSize() int {
	return c.maxSize
}

type section struct {
	header string
	level  int
	body   string
}

// Chunk splits content into chunks. IDs are deterministic for a given
// sourceURL and content: "{sourceURL with / replaced by _}_{n}" where n
// counts chunks across the whole document.
func (c *Chunker) Chunk(content, sourceURL, title, hierarchyPath string) []ContentChunk {
	var chunks []ContentChunk
	for _, sec := range splitSections(content) {
		for _, piece := range c.chunkSection(sec, sourceURL, title, hierarchyPath) {
			piece.ID = ChunkID(sourceURL, len(chunks))
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

// splitSections groups lines under the markdown header that precedes them.
// Text before the first header forms a section with an empty header.
// Lines inside fenced code blocks never start a section.
func splitSections(content string) []section {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var sections []section
	current := section{}
	var body []string
	inFence := false

	flush := func() {
		current.body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.body != "" {
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}
		if !inFence {
			if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
				flush()
				current = section{header: trimmed, level: len(m[1])}
				body = nil
				continue
			}
		}
		body = append(body, line)
	}
	flush()

	return sections
}

func (c *Chunker) chunkSection(sec section, sourceURL, title, hierarchyPath string) []ContentChunk {
	header := sec.header
	// A header longer than a quarter of the budget is shortened in chunk text only.
	if limit := c.maxSize / 4; runeLen(header) > limit {
		header = truncateRunes(header, limit)
	}

	single := sec.body
	if header != "" {
		single = header + "\n\n" + sec.body
	}
	if runeLen(single) <= c.maxSize {
		return []ContentChunk{{
			Text:          single,
			SourceURL:     sourceURL,
			Title:         title,
			HierarchyPath: hierarchyPath,
			Metadata: ChunkMetadata{
				SourceURL:     sourceURL,
				HierarchyPath: hierarchyPath,
				Title:         title,
				SectionHeader: sec.header,
			},
		}}
	}

	// Reserve room for the widest part label this section could need.
	budget := c.maxSize
	withPrefix := header != ""
	if withPrefix {
		budget -= runeLen(partPrefix(header, runeLen(sec.body)))
		if budget <= 0 {
			budget = c.maxSize
			withPrefix = false
		}
	}

	pieces := c.splitBySize(sec.body, budget)
	chunks := make([]ContentChunk, 0, len(pieces))
	for i, piece := range pieces {
		part := i + 1
		text := piece
		if withPrefix {
			text = partPrefix(header, part) + piece
		}
		chunks = append(chunks, ContentChunk{
			Text:          text,
			SourceURL:     sourceURL,
			Title:         title,
			HierarchyPath: hierarchyPath,
			Metadata: ChunkMetadata{
				SourceURL:     sourceURL,
				HierarchyPath: fmt.Sprintf("%s#part-%d", hierarchyPath, part),
				Title:         fmt.Sprintf("%s - Part %d", title, part),
				SectionHeader: sec.header,
				ChunkIndex:    i,
				IsPart:        true,
			},
		})
	}
	return chunks
}

// ChunkID returns the identifier of the n-th chunk of a document.
func ChunkID(sourceURL string, n int) string {
	return strings.ReplaceAll(sourceURL, "/", "_") + "_" + strconv.Itoa(n)
}

func partPrefix(header string, part int) string {
	return fmt.Sprintf("%s (Part %d)\n\n", header, part)
}

// splitBySize greedily packs sentences into pieces of at most budget runes.
// Pieces that are still too long are cut into overlapping windows.
func (c *Chunker) splitBySize(text string, budget int) []string {
	var pieces []string
	var buf strings.Builder
	bufLen := 0

	for _, sentence := range splitSentences(text) {
		n := runeLen(sentence)
		if bufLen+n <= budget {
			buf.WriteString(sentence)
			buf.WriteByte(' ')
			bufLen += n + 1
			continue
		}
		if s := strings.TrimSpace(buf.String()); s != "" {
			pieces = append(pieces, s)
		}
		buf.Reset()
		buf.WriteString(sentence)
		buf.WriteByte(' ')
		bufLen = n + 1
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		pieces = append(pieces, s)
	}

	final := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if runeLen(piece) > budget {
			final = append(final, c.hardSplit(piece, budget)...)
			continue
		}
		final = append(final, piece)
	}
	return final
}

// hardSplit cuts text into windows of size runes advancing by size-overlap.
func (c *Chunker) hardSplit(text string, size int) []string {
	runes := []rune(text)
	step := size - c.overlap
	if step < 1 {
		step = 1
	}

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}

// splitSentences splits after '.', '!' or '?' followed by whitespace.
// The punctuation stays with its sentence and the whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
