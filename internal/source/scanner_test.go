package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	return full
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.md", "# Intro")
	writeFile(t, root, "part-1/chapter_one.mdx", "# Chapter")
	writeFile(t, root, "part-1/notes.txt", "ignored")
	writeFile(t, root, "part-2/deep/UPPER.MD", "# Upper")
	writeFile(t, root, ".docusaurus/cache.md", "hidden")
	writeFile(t, root, "node_modules/pkg/readme.md", "vendored")

	docs, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []Document{
		{RelPath: "intro.md", SourceURL: "/docs/intro", HierarchyPath: "intro"},
		{RelPath: "part-1/chapter_one.mdx", SourceURL: "/docs/part-1/chapter_one", HierarchyPath: "part-1/chapter_one"},
		{RelPath: "part-2/deep/UPPER.MD", SourceURL: "/docs/part-2/deep/UPPER", HierarchyPath: "part-2/deep/UPPER"},
	}
	if len(docs) != len(want) {
		t.Fatalf("Scan() returned %d docs, want %d: %+v", len(docs), len(want), docs)
	}
	for i, w := range want {
		got := docs[i]
		if got.RelPath != w.RelPath {
			t.Errorf("docs[%d].RelPath = %q, want %q", i, got.RelPath, w.RelPath)
		}
		if got.SourceURL != w.SourceURL {
			t.Errorf("docs[%d].SourceURL = %q, want %q", i, got.SourceURL, w.SourceURL)
		}
		if got.HierarchyPath != w.HierarchyPath {
			t.Errorf("docs[%d].HierarchyPath = %q, want %q", i, got.HierarchyPath, w.HierarchyPath)
		}
		if !filepath.IsAbs(got.AbsPath) {
			t.Errorf("docs[%d].AbsPath = %q, want absolute path", i, got.AbsPath)
		}
	}
}

func TestScanner_Scan_DeduplicatesSymlinks(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "a/chapter.md", "# Chapter")
	if err := os.Symlink(target, filepath.Join(root, "alias.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	docs, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Scan() returned %d docs, want 1: %+v", len(docs), docs)
	}
}

func TestScanner_Scan_SkipsDuplicateSourceURL(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.md", "# Intro")
	writeFile(t, root, "intro.mdx", "# Intro again")
	writeFile(t, root, "part-1/setup.mdx", "# Setup")
	writeFile(t, root, "part-1/setup.md", "# Setup again")

	docs, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{"intro.md", "part-1/setup.md"}
	if len(docs) != len(want) {
		t.Fatalf("Scan() returned %d docs, want %d: %+v", len(docs), len(want), docs)
	}
	urls := make(map[string]bool)
	for i, w := range want {
		if docs[i].RelPath != w {
			t.Errorf("docs[%d].RelPath = %q, want %q", i, docs[i].RelPath, w)
		}
		if urls[docs[i].SourceURL] {
			t.Errorf("SourceURL %q returned twice", docs[i].SourceURL)
		}
		urls[docs[i].SourceURL] = true
	}
}

func TestScanner_Scan_Errors(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "file.md", "x")

	tests := []struct {
		name string
		root string
	}{
		{name: "missing root", root: filepath.Join(root, "missing")},
		{name: "root is a file", root: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScanner().Scan(context.Background(), tt.root); err == nil {
				t.Error("Scan() error = nil, want error")
			}
		})
	}
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.md", "# Intro")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewScanner().Scan(ctx, root); err == nil {
		t.Error("Scan() error = nil, want context error")
	}
}
