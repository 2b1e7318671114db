package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bengal-ssg/bengal/internal/config"
	"github.com/bengal-ssg/bengal/internal/schema"
)

type blogFrontmatter struct {
	Title string   `schema:"title,required"`
	Tags  []string `schema:"tags"`
}

func writeContentFile(t *testing.T, contentDir, rel, content string) {
	t.Helper()
	path := filepath.Join(contentDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateContent(t *testing.T) {
	contentDir := t.TempDir()
	writeContentFile(t, contentDir, "blog/good.md", "---\ntitle: Fine\ntags: [go]\n---\nbody\n")
	writeContentFile(t, contentDir, "blog/missing-title.md", "---\ntags: [go]\n---\nbody\n")
	writeContentFile(t, contentDir, "blog/broken.md", "---\ntitle: [unclosed\n")
	writeContentFile(t, contentDir, "pages/unrouted.md", "---\nanything: 1\n---\nbody\n")

	cfg := config.Default()
	cfg.ContentDir = contentDir
	cfg.Collections = map[string]config.CollectionConfig{
		"blog": {Directory: "blog", Glob: "**/*.md", Strict: true},
	}

	issues, err := ValidateContent(cfg, map[string]*schema.Validator{
		"blog": schema.New(&blogFrontmatter{}),
	})
	if err != nil {
		t.Fatal(err)
	}

	byPath := map[string]int{}
	for _, issue := range issues {
		byPath[issue.Path]++
	}
	if byPath["blog/good.md"] != 0 {
		t.Errorf("good.md should have no issues: %v", issues)
	}
	if byPath["blog/missing-title.md"] == 0 {
		t.Error("expected a missing-required-title issue")
	}
	if byPath["blog/broken.md"] == 0 {
		t.Error("expected a frontmatter parse issue")
	}
	if byPath["pages/unrouted.md"] != 0 {
		t.Error("unrouted files are not validated")
	}
}

func TestListSources(t *testing.T) {
	contentDir := t.TempDir()
	writeContentFile(t, contentDir, "blog/a.md", "---\ntitle: A\n---\n")
	writeContentFile(t, contentDir, "about.md", "---\ntitle: About\n---\n")

	cfg := config.Default()
	cfg.ContentDir = contentDir
	cfg.Collections = map[string]config.CollectionConfig{
		"blog": {Directory: "blog", Glob: "**/*.md"},
	}

	entries, err := ListSources(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, e := range entries {
		got[e.Path] = e.Collection
	}
	if got["blog/a.md"] != "blog" {
		t.Errorf("blog/a.md owned by %q", got["blog/a.md"])
	}
	if got["about.md"] != "" {
		t.Errorf("about.md owned by %q, want none", got["about.md"])
	}
}
