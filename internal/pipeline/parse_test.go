package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFrontmatter(t *testing.T) {
	meta, body, raw, err := parseFrontmatter("---\ntitle: Hello\ntags: [go, web]\n---\n\nBody text.")
	if err != nil {
		t.Fatal(err)
	}
	if meta["title"] != "Hello" {
		t.Errorf("title = %v", meta["title"])
	}
	if body != "\nBody text." {
		t.Errorf("body = %q", body)
	}
	if raw == "" {
		t.Error("expected raw frontmatter retained")
	}
}

func TestParseFrontmatterMissing(t *testing.T) {
	meta, body, raw, err := parseFrontmatter("No frontmatter here.")
	if err != nil {
		t.Fatal(err)
	}
	if len(meta) != 0 || raw != "" {
		t.Errorf("meta = %v raw = %q", meta, raw)
	}
	if body != "No frontmatter here." {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontmatterUnclosed(t *testing.T) {
	if _, _, _, err := parseFrontmatter("---\ntitle: Oops\n\nBody"); err == nil {
		t.Error("expected unclosed frontmatter to error")
	}
}

func TestSlugFromPath(t *testing.T) {
	cases := map[string]string{
		"about.md":            "about",
		"blog/post.md":        "blog/post",
		"blog/_index.md":      "blog",
		"blog/index.md":       "blog",
		"docs/guide/setup.md": "docs/guide/setup",
	}
	for in, want := range cases {
		if got := slugFromPath(in); got != want {
			t.Errorf("slugFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHrefFromSlug(t *testing.T) {
	if got := hrefFromSlug(""); got != "/" {
		t.Errorf("hrefFromSlug(\"\") = %q", got)
	}
	if got := hrefFromSlug("blog/post"); got != "/blog/post/" {
		t.Errorf("hrefFromSlug(blog/post) = %q", got)
	}
}

func TestParseMetaDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024-01-15T10:30:00Z", "2024-01-15", true},
		{"January 15, 2024", "2024-01-15", true}, // dateparser fallback
		{"not a date at all zzz", "", false},
		{42, "", false},
	}
	for _, c := range cases {
		got, ok := parseMetaDate(c.in)
		if ok != c.ok {
			t.Errorf("parseMetaDate(%v) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("parseMetaDate(%v) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestParseContentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\ntitle: A Post\ndate: 2024-01-15\ntags: [go]\npublished: true\n---\n\n# Heading\n"
	if err := os.WriteFile(filepath.Join(path, "a.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	page, err := parseContentFile(dir, DiscoveredFile{Path: "blog/a.md"})
	if err != nil {
		t.Fatal(err)
	}
	if page.Title != "A Post" {
		t.Errorf("title = %q", page.Title)
	}
	if page.Date == nil || !page.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", page.Date)
	}
	if !page.Published {
		t.Error("expected published")
	}
	if page.Section != "blog" || page.Slug != "blog/a" || page.Href != "/blog/a/" {
		t.Errorf("section/slug/href = %q/%q/%q", page.Section, page.Slug, page.Href)
	}
	if len(page.Tags) != 1 || page.Tags[0] != "go" {
		t.Errorf("tags = %v", page.Tags)
	}
	if page.InputHash == "" {
		t.Error("expected input hash")
	}
}
