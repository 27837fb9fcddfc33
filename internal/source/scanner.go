package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"bookrag-ai/internal/contextutil"
)

// Document represents a markdown file found during scanning.
type Document struct {
	AbsPath       string // Absolute file path
	RelPath       string // Relative path from the source root, slash separated (e.g., "part-1/intro.md")
	SourceURL     string // Public URL of the rendered page (e.g., "/docs/part-1/intro")
	HierarchyPath string // Relative path without extension (e.g., "part-1/intro")
}

// Scanner discovers book content under a root directory.
type Scanner struct {
	extensions map[string]struct{}
	urlPrefix  string
}

// NewScanner creates a scanner for .md and .mdx files published under /docs.
func NewScanner() *Scanner {
	return &Scanner{
		extensions: map[string]struct{}{".md": {}, ".mdx": {}},
		urlPrefix:  "/docs",
	}
}

// Scan walks root recursively and returns every markdown document once, sorted by relative path.
// When two files publish to the same URL (intro.md and intro.mdx), the first in
// lexical order is kept and the other is skipped with a warning.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access source root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", root)
	}

	seen := make(map[string]struct{})
	urls := make(map[string]string)
	var docs []Document

	err = filepath.Walk(absRoot, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", p, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			name := info.Name()
			if p != absRoot && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := s.extensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}

		// Resolve symlinks so the same file reached twice is only ingested once
		canonical, err := filepath.EvalSymlinks(p)
		if err != nil {
			canonical = p
		}
		if _, dup := seen[canonical]; dup {
			return nil
		}
		seen[canonical] = struct{}{}

		relPath, err := filepath.Rel(absRoot, p)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", p, err)
		}
		doc := s.describe(p, filepath.ToSlash(relPath))
		if first, dup := urls[doc.SourceURL]; dup {
			logger.WarnContext(ctx, "skipping file with duplicate source url",
				"rel_path", doc.RelPath, "source_url", doc.SourceURL, "kept", first)
			return nil
		}
		urls[doc.SourceURL] = doc.RelPath
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return docs, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, nil
}

func (s *Scanner) describe(absPath, relPath string) Document {
	hierarchy := strings.TrimSuffix(relPath, path.Ext(relPath))
	return Document{
		AbsPath:       absPath,
		RelPath:       relPath,
		SourceURL:     s.urlPrefix + "/" + hierarchy,
		HierarchyPath: hierarchy,
	}
}
