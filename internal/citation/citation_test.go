package citation

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookrag-ai/internal/vectorstore"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
	}{
		{
			name:     "short text kept",
			text:     "Robots sense the world.",
			wantText: "Robots sense the world.",
		},
		{
			name:     "exactly at limit kept",
			text:     strings.Repeat("a", MaxTextLength),
			wantText: strings.Repeat("a", MaxTextLength),
		},
		{
			name:     "long text truncated with ellipsis",
			text:     strings.Repeat("b", MaxTextLength+1),
			wantText: strings.Repeat("b", MaxTextLength) + "...",
		},
		{
			name:     "truncation counts characters not bytes",
			text:     strings.Repeat("é", MaxTextLength+5),
			wantText: strings.Repeat("é", MaxTextLength) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Format("/docs/intro", "Intro", tt.text, 0.8)
			assert.Equal(t, tt.wantText, c.Text)
			assert.Equal(t, "[Intro](/docs/intro)", c.Formatted)
			assert.Equal(t, "/docs/intro", c.SourceURL)
			assert.Equal(t, "Intro", c.Title)
			assert.InDelta(t, 0.8, c.Relevance, 1e-9)
		})
	}
}

func TestFromResults_SortedByRelevance(t *testing.T) {
	results := []vectorstore.SearchResult{
		{ID: "a", Score: 0.2, Payload: map[string]any{"source_url": "/docs/a", "title": "A", "chunk_text": "alpha"}},
		{ID: "b", Score: 0.9, Payload: map[string]any{"source_url": "/docs/b", "title": "B", "chunk_text": "beta"}},
		{ID: "c", Score: 0.5, Payload: map[string]any{"source_url": "/docs/c", "title": "C", "chunk_text": "gamma"}},
		{ID: "d", Score: 0.5, Payload: map[string]any{"source_url": "/docs/d", "title": "D", "chunk_text": "delta"}},
	}

	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}}
	for _, perm := range permutations {
		input := make([]vectorstore.SearchResult, len(perm))
		for i, idx := range perm {
			input[i] = results[idx]
		}

		citations := FromResults(input, "query")
		require.Len(t, citations, len(results))
		assert.True(t, sort.SliceIsSorted(citations, func(i, j int) bool {
			return citations[i].Relevance > citations[j].Relevance
		}), "citations not sorted for permutation %v", perm)

		assert.Equal(t, "B", citations[0].Title)
		assert.Equal(t, "A", citations[3].Title)
		// Ties may come out in either order.
		assert.ElementsMatch(t, []string{"C", "D"}, []string{citations[1].Title, citations[2].Title})
	}
}

func TestFromResults_PayloadDefaults(t *testing.T) {
	results := []vectorstore.SearchResult{
		{ID: "x", Score: 0.7, Payload: map[string]any{"chunk_text": strings.Repeat("z", 600)}},
	}

	citations := FromResults(results, "")
	require.Len(t, citations, 1)

	c := citations[0]
	assert.Equal(t, DefaultTitle, c.Title)
	assert.Equal(t, "", c.SourceURL)
	assert.Equal(t, strings.Repeat("z", MaxTextLength)+"...", c.Text)
	assert.Equal(t, "[Untitled]()", c.Formatted)
}

func TestFromResults_Empty(t *testing.T) {
	assert.Empty(t, FromResults(nil, "q"))
}

func TestValidate(t *testing.T) {
	valid := Format("/docs/intro", "Intro", "text", DefaultRelevance)

	tests := []struct {
		name   string
		mutate func(*Citation)
		want   bool
	}{
		{name: "all fields present", mutate: func(*Citation) {}, want: true},
		{name: "zero relevance is present", mutate: func(c *Citation) { c.Relevance = 0 }, want: true},
		{name: "missing source url", mutate: func(c *Citation) { c.SourceURL = "" }, want: false},
		{name: "missing title", mutate: func(c *Citation) { c.Title = "" }, want: false},
		{name: "missing text", mutate: func(c *Citation) { c.Text = "" }, want: false},
		{name: "missing formatted", mutate: func(c *Citation) { c.Formatted = "" }, want: false},
		{name: "missing relevance", mutate: func(c *Citation) { c.Relevance = math.NaN() }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Equal(t, tt.want, Validate(c))
		})
	}
}

func TestValidateAll(t *testing.T) {
	good := Format("/docs/a", "A", "text", 0.5)
	bad := Format("", "B", "text", 0.4)

	ok, invalid := ValidateAll([]Citation{good, bad, good, bad})
	assert.False(t, ok)
	assert.Equal(t, []int{1, 3}, invalid)

	ok, invalid = ValidateAll([]Citation{good})
	assert.True(t, ok)
	assert.Empty(t, invalid)
}

func TestExtractContext(t *testing.T) {
	content := strings.Repeat("x", 150) + "Inverse Kinematics" + strings.Repeat("y", 150)

	t.Run("window around match", func(t *testing.T) {
		got := ExtractContext(content, "inverse kinematics", 10)
		assert.Equal(t, "..."+strings.Repeat("x", 10)+"Inverse Kinematics"+strings.Repeat("y", 10)+"...", got)
	})

	t.Run("match at start has no leading ellipsis", func(t *testing.T) {
		got := ExtractContext("Sensors matter. More text follows here.", "sensors", 5)
		assert.Equal(t, "Sensors matt...", got)
	})

	t.Run("sentences containing query words", func(t *testing.T) {
		text := "Robots move. Sensors detect light. Motors spin. Sensors also detect sound"
		got := ExtractContext(text, "sensors wheels", 100)
		assert.Equal(t, "Sensors detect light. Sensors also detect sound.", got)
	})

	t.Run("falls back to leading characters", func(t *testing.T) {
		got := ExtractContext(strings.Repeat("q", 50), "absent", 10)
		assert.Equal(t, strings.Repeat("q", 20)+"...", got)
	})

	t.Run("short content returned whole", func(t *testing.T) {
		assert.Equal(t, "tiny", ExtractContext("tiny", "absent", 10))
	})

	t.Run("empty query yields leading window", func(t *testing.T) {
		got := ExtractContext("Sensors detect light. Motors spin.", "", 7)
		assert.Equal(t, "Sensors...", got)
		assert.Equal(t, "tiny", ExtractContext("tiny", "", 10))
	})
}
