// Package citation turns retrieved chunks into ordered, display-ready source references.
package citation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"bookrag-ai/internal/vectorstore"
)

const (
	// MaxTextLength is the excerpt length kept in a citation.
	MaxTextLength = 200
	// MaxSourceTextLength is how much chunk text is read from a result payload.
	MaxSourceTextLength = 500
	// DefaultRelevance is used when the caller has no similarity score.
	DefaultRelevance = 1.0
	// DefaultTitle is used when a payload carries no title.
	DefaultTitle = "Untitled"
	// DefaultContextWindow is the number of characters kept on each side of a match.
	DefaultContextWindow = 100

	ellipsis = "..."
)

// Citation is a formatted reference back to a source chunk.
type Citation struct {
	SourceURL string  `json:"source_url"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance_score"`
	Formatted string  `json:"formatted_citation"`
}

// Format builds a citation, cutting text to MaxTextLength characters.
func Format(sourceURL, title, text string, relevance float64) Citation {
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength]) + ellipsis
	}
	return Citation{
		SourceURL: sourceURL,
		Title:     title,
		Text:      text,
		Relevance: relevance,
		Formatted: fmt.Sprintf("[%s](%s)", title, sourceURL),
	}
}

// FromResults builds citations from search hits, ordered by relevance descending.
// The input order is ignored. Equal scores keep their input order.
func FromResults(results []vectorstore.SearchResult, query string) []Citation {
	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		sourceURL := payloadString(r.Payload, "source_url", "")
		title := payloadString(r.Payload, "title", DefaultTitle)
		text := payloadString(r.Payload, "chunk_text", "")
		if runes := []rune(text); len(runes) > MaxSourceTextLength {
			text = string(runes[:MaxSourceTextLength])
		}
		citations = append(citations, Format(sourceURL, title, text, float64(r.Score)))
	}

	sort.SliceStable(citations, func(i, j int) bool {
		return citations[i].Relevance > citations[j].Relevance
	})
	return citations
}

func payloadString(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return fallback
}

// Validate reports whether every required field is present.
// Empty strings count as absent, as does a NaN relevance.
func Validate(c Citation) bool {
	return c.SourceURL != "" &&
		c.Title != "" &&
		c.Text != "" &&
		c.Formatted != "" &&
		!math.IsNaN(c.Relevance)
}

// ValidateAll validates each citation and returns the indexes of the invalid ones.
func ValidateAll(citations []Citation) (bool, []int) {
	var invalid []int
	for i, c := range citations {
		if !Validate(c) {
			invalid = append(invalid, i)
		}
	}
	return len(invalid) == 0, invalid
}

// ExtractContext returns the part of content around the first case-insensitive
// occurrence of query, with window characters on each side. When query does not
// occur verbatim, up to three sentences containing a query word are returned;
// failing that, the first 2*window characters. An empty query yields the first
// window characters.
func ExtractContext(content, query string, window int) string {
	if window <= 0 {
		window = DefaultContextWindow
	}

	runes := []rune(content)
	needle := []rune(strings.ToLower(query))
	if pos := indexFold(runes, needle); pos >= 0 {
		start := max(0, pos-window)
		end := min(len(runes), pos+len(needle)+window)
		out := string(runes[start:end])
		if start > 0 {
			out = ellipsis + out
		}
		if end < len(runes) {
			out += ellipsis
		}
		return out
	}

	words := strings.Fields(strings.ToLower(query))
	var relevant []string
	for _, sentence := range strings.Split(content, ".") {
		lower := strings.ToLower(sentence)
		for _, w := range words {
			if strings.Contains(lower, w) {
				relevant = append(relevant, strings.TrimSpace(sentence))
				break
			}
		}
		if len(relevant) == 3 {
			break
		}
	}
	if len(relevant) > 0 {
		out := strings.Join(relevant, ". ")
		if !strings.HasSuffix(out, ".") {
			out += "."
		}
		return out
	}

	if len(runes) > window*2 {
		return string(runes[:window*2]) + ellipsis
	}
	return content
}

// indexFold finds needle (already lower-cased) in haystack, comparing rune by rune.
// An empty needle matches at 0.
func indexFold(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
