package indexer

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Document is a markdown source prepared for chunking.
type Document struct {
	Title string
	Body  string // Markdown with frontmatter and MDX module lines removed
}

type frontmatter struct {
	Title string `yaml:"title"`
}

// MarkdownNormalizer prepares .md and .mdx files for chunking.
type MarkdownNormalizer struct {
	parser goldmark.Markdown
}

// NewMarkdownNormalizer creates a normalizer backed by goldmark.
func NewMarkdownNormalizer() *MarkdownNormalizer {
	return &MarkdownNormalizer{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Normalize strips frontmatter and MDX import/export lines and resolves the
// document title: frontmatter title, then first H1, then first H2, then filename.
func (n *MarkdownNormalizer) Normalize(content []byte, filename string) Document {
	raw := strings.ReplaceAll(string(content), "\r\n", "\n")
	fm, body := splitFrontmatter(raw)
	if strings.EqualFold(filepath.Ext(filename), ".mdx") {
		body = stripMDXModuleLines(body)
	}

	title := fm.Title
	if title == "" {
		title = n.extractTitle([]byte(body))
	}
	if title == "" {
		title = titleFromFilename(filename)
	}

	return Document{
		Title: strings.TrimSpace(title),
		Body:  body,
	}
}

// splitFrontmatter separates a leading "---" YAML block from the body.
// Malformed frontmatter is left in the body.
func splitFrontmatter(content string) (frontmatter, string) {
	var fm frontmatter
	if !strings.HasPrefix(content, "---\n") {
		return fm, content
	}
	rest := content[len("---"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, content
	}
	block := rest[:end]
	after := rest[end+len("\n---"):]
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = ""
	}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return frontmatter{}, content
	}
	return fm, after
}

func stripMDXModuleLines(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "export ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// extractTitle returns the first H1, falling back to the first H2 seen before any H1.
func (n *MarkdownNormalizer) extractTitle(content []byte) string {
	doc := n.parser.Parser().Parse(text.NewReader(content))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headingText := extractTextFromNode(heading, content)
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkSkipChildren, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	return firstH2
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// titleFromFilename turns "getting-started_guide.md" into "Getting Started Guide".
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
